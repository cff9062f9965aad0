package main

import (
	"context"
	"strings"
	"testing"
)

func TestRunFailsOnInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing db url", map[string]string{"DB_URL": "", "JWT_SECRET": strings.Repeat("s", 32)}, "DB_URL"},
		{"short secret", map[string]string{"DB_URL": "postgres://localhost/db", "JWT_SECRET": "short"}, "JWT_SECRET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			err := run(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("run() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
