package projectrel

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgmesh/orgkb/pkg/apperror"
)

func newJSONContext(t *testing.T, method, body string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

// A payload with the wrong type for a known property is a validation
// failure (422), not a generic bad request.
func TestMalformedPropertyPayloadValidation(t *testing.T) {
	h := NewHandler(nil)

	tests := []struct {
		name   string
		invoke func(c echo.Context) error
		body   string
	}{
		{
			name:   "assign resource with string allocation",
			invoke: h.AssignResource,
			body:   `{"allocation_percentage": "fifty"}`,
		},
		{
			name:   "assign manager with numeric role",
			invoke: h.AssignManager,
			body:   `{"role": 123}`,
		},
		{
			name:   "merge update with array body",
			invoke: h.UpdateResource,
			body:   `[1, 2, 3]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.invoke(newJSONContext(t, http.MethodPost, tt.body))
			require.Error(t, err)

			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
		})
	}
}
