package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/masterdesk/internal/backend"
)

func TestRespondErrorMapsBackendFailures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"unavailable", fmt.Errorf("%w: units.list", backend.ErrUnavailable), http.StatusBadGateway, "cannot connect to the data service"},
		{"rejected", &backend.APIError{StatusCode: 400, Message: "Mã đã tồn tại"}, http.StatusUnprocessableEntity, "Mã đã tồn tại"},
		{"token", &backend.APIError{StatusCode: 401, Message: "expired"}, http.StatusUnauthorized, "sign in required"},
		{"not found", fmt.Errorf("unit KG: %w", ErrNotFound), http.StatusNotFound, "unit KG: resource not found"},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			var body ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body.Status)
			assert.Equal(t, tc.detail, body.Detail)
		})
	}
}
