package loggingmw

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ln := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if ln == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(ln), &rec))
		out = append(out, rec)
	}
	return out
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "info")))

	e.GET("/api/orders/:id", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("handler_ran")
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/api/broken", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusConflict, "nope")
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/orders/5", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	e.ServeHTTP(httptest.NewRecorder(), req)

	recs := lines(t, &buf)
	require.Len(t, recs, 2)
	require.Equal(t, "handler_ran", recs[0]["msg"])
	require.Equal(t, "rid-1", recs[0]["request_id"])
	require.Equal(t, "/api/orders/:id", recs[1]["path"])
	require.EqualValues(t, 200, recs[1]["status"])
	require.Equal(t, "INFO", recs[1]["level"])

	buf.Reset()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/broken", nil))
	require.Equal(t, http.StatusConflict, rec.Code)
	recs = lines(t, &buf)
	require.Len(t, recs, 1)
	require.Equal(t, "WARN", recs[0]["level"])
	require.EqualValues(t, 409, recs[0]["status"])

	buf.Reset()
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Zero(t, buf.Len())
}
