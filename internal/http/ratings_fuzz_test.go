package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func FuzzDecodeRateRequest(f *testing.F) {
	seeds := []string{
		`{"content":"6f1c1d5e-4d1a-4c3b-9a55-1d2b7f8e9a10","rating":4}`,
		`{"content":"x","rating":"4"}`,
		`{"rating":99999999999999999999}`,
		`[]`,
		``,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		req := httptest.NewRequest(http.MethodPost, "/rating", strings.NewReader(raw))
		var dst rateRequest
		_ = decodeJSONBody(httptest.NewRecorder(), req, &dst)
	})
}
