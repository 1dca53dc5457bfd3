package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpampin/mercadito/pkg/errors"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     int
		wantCode string
	}{
		{"validation", errors.NewValidationError("title", "", "title is required"), http.StatusBadRequest, "BAD_REQUEST"},
		{"not found", errors.NewNotFoundError("product", "x"), http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", errors.NewAPIError(401, "/user", "bad credentials"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"conflict", errors.NewConflictError("data/products.json", "v1", nil), http.StatusConflict, "CONFLICT"},
		{"stale sha api error", errors.NewAPIError(409, "/contents", "conflict"), http.StatusConflict, "CONFLICT"},
		{"missing precondition api error", errors.NewAPIError(422, "/contents", "sha missing"), http.StatusConflict, "CONFLICT"},
		{"timeout", errors.NewTimeoutError("PUT /contents", "15s", "deadline exceeded"), http.StatusGatewayTimeout, "TIMEOUT"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			FromError(w, tt.err)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}

			var resp Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid response body: %v", err)
			}
			if resp.Error == nil {
				t.Fatal("expected an error payload")
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestEnvelopeShape(t *testing.T) {
	w := httptest.NewRecorder()
	OK(w, map[string]int{"n": 1})

	var resp struct {
		Data  map[string]int  `json:"data"`
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Data["n"] != 1 {
		t.Errorf("data = %v", resp.Data)
	}
	if string(resp.Error) != "null" {
		t.Errorf("error should be null on success, got %s", resp.Error)
	}
}
