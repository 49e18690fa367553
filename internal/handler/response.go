package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/lab-equipment-booking/internal/errs"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

// HTTPErrorHandler renders handler and middleware errors as an envelope.
// Domain errors map through errs.Status; echo errors keep their code.
// Anything that ends up as a 500 is logged and replaced by a generic message.
func HTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	log = log.Named("http")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := resolve(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, envelope{Success: false, Error: msg})
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}

func resolve(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return he.Code, "Server Error"
		}
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, fmt.Sprint(he.Message)
	}
	return errs.Status(err), errs.Message(err)
}
