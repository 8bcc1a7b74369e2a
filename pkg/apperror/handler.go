package apperror

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// body is the uniform error envelope: {error: {message, status}, message}
type body struct {
	Error   detail `json:"error"`
	Message string `json:"message"`
}

type detail struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// HTTPErrorHandler translates errors into the uniform JSON error body.
// Register it as the Echo instance's error handler.
func HTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"

		var appErr *Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.Status()
			message = appErr.Message
		case errors.As(err, &httpErr):
			// Router-level errors (unknown route, bad method)
			status = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				message = msg
			}
		default:
			log.Error("unhandled error",
				zap.String("path", c.Request().URL.Path),
				zap.Error(err))
		}

		resp := body{
			Error:   detail{Message: message, Status: status},
			Message: message,
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, resp)
		}
		if err != nil {
			log.Error("failed to write error response", zap.Error(err))
		}
	}
}
