package validation

import (
	"errors"
	"testing"

	"github.com/Clark-Hu/content-ratings/internal/domain"
)

type sample struct {
	Title   string  `json:"title" validate:"required,notblank,max=10"`
	Content string  `json:"content" validate:"required,uuid"`
	Note    *string `json:"note,omitempty" validate:"omitempty,min=2"`
}

func TestStruct(t *testing.T) {
	short := "x"
	tests := []struct {
		name      string
		in        sample
		wantField string
		wantMsg   string
	}{
		{"valid", sample{Title: "ok", Content: "6f1c1d5e-4d1a-4c3b-9a55-1d2b7f8e9a10"}, "", ""},
		{"missing title", sample{Content: "6f1c1d5e-4d1a-4c3b-9a55-1d2b7f8e9a10"}, "title", "title is required"},
		{"blank title", sample{Title: "   ", Content: "6f1c1d5e-4d1a-4c3b-9a55-1d2b7f8e9a10"}, "title", "title must not be blank"},
		{"long title", sample{Title: "abcdefghijk", Content: "6f1c1d5e-4d1a-4c3b-9a55-1d2b7f8e9a10"}, "title", "title must be at most 10 characters"},
		{"bad uuid", sample{Title: "ok", Content: "nope"}, "content", "content must be a valid id"},
		{"short note", sample{Title: "ok", Content: "6f1c1d5e-4d1a-4c3b-9a55-1d2b7f8e9a10", Note: &short}, "note", "note must be at least 2 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("error %v does not match ErrValidation", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error %T is not a ValidationError", err)
			}
			if ve.Field != tt.wantField || ve.Message != tt.wantMsg {
				t.Fatalf("got (%q, %q), want (%q, %q)", ve.Field, ve.Message, tt.wantField, tt.wantMsg)
			}
		})
	}
}
