package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"hello": "world"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	require.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "Email already exists!")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"success":false,"message":"Email already exists!"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type body struct {
		Email string `json:"email"`
	}

	tests := []struct {
		name    string
		payload string
		wantErr bool
		want    string
	}{
		{"valid", `{"email":"ada@x.com"}`, false, "ada@x.com"},
		{"extra fields tolerated", `{"email":"ada@x.com","extra":1}`, false, "ada@x.com"},
		{"empty", ``, true, ""},
		{"not json", `email=ada`, true, ""},
		{"two objects", `{"email":"a"}{"email":"b"}`, true, ""},
		{"too large", `{"email":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			var got body
			err := DecodeJSON(httptest.NewRecorder(), req, &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.Email)
		})
	}
}

func TestErrorBody_OmitsEmptyStack(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(ErrorBody{Message: "x"})
	require.NoError(t, err)
	require.NotContains(t, string(b), "stack")
}
