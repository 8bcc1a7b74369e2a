package apperror

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, BadRequest("bad").Status())
	assert.Equal(t, http.StatusNotFound, NotFound("missing %s", "thing").Status())
	assert.Equal(t, http.StatusConflict, Conflict("taken").Status())
	assert.Equal(t, http.StatusInternalServerError, Internal("boom").Status())

	err := NotFound("Company with code '%s' not found", "apple")
	assert.Equal(t, "Company with code 'apple' not found", err.Error())
}

func TestHTTPErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(zap.NewNop())

	serve := func(handler echo.HandlerFunc) *httptest.ResponseRecorder {
		e.GET("/boom", handler)
		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	type body struct {
		Error struct {
			Message string `json:"message"`
			Status  int    `json:"status"`
		} `json:"error"`
		Message string `json:"message"`
	}

	t.Run("tagged errors map to their status and message", func(t *testing.T) {
		rec := serve(func(c echo.Context) error {
			return NotFound("Invoice with id '%d' not found", 7)
		})
		require.Equal(t, http.StatusNotFound, rec.Code)

		var b body
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
		assert.Equal(t, "Invoice with id '7' not found", b.Message)
		assert.Equal(t, "Invoice with id '7' not found", b.Error.Message)
		assert.Equal(t, http.StatusNotFound, b.Error.Status)
	})

	t.Run("unclassified errors default to 500", func(t *testing.T) {
		e := echo.New()
		e.HTTPErrorHandler = HTTPErrorHandler(zap.NewNop())
		e.GET("/oops", func(c echo.Context) error {
			return errors.New("driver: connection refused")
		})
		req := httptest.NewRequest(http.MethodGet, "/oops", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var b body
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
		// Internals never leak to the client
		assert.Equal(t, "Internal server error", b.Message)
		assert.Equal(t, http.StatusInternalServerError, b.Error.Status)
	})

	t.Run("router errors keep their status", func(t *testing.T) {
		e := echo.New()
		e.HTTPErrorHandler = HTTPErrorHandler(zap.NewNop())
		req := httptest.NewRequest(http.MethodGet, "/no-such-route", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)

		var b body
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
		assert.Equal(t, http.StatusNotFound, b.Error.Status)
	})
}
