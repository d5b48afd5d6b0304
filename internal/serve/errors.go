package serve

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainerr "kyon/internal/domain/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify maps an error onto a status and a stable error code. Compile
// failures are 422 so clients can tell a broken post from a missing one.
func classify(err error) (int, errorDetail) {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, domainerr.ErrNotFound):
		return http.StatusNotFound, errorDetail{"not_found", publicMessage(err)}
	case errors.Is(err, domainerr.ErrMalformedFrontmatter):
		return http.StatusUnprocessableEntity, errorDetail{"malformed_frontmatter", publicMessage(err)}
	case errors.Is(err, domainerr.ErrMalformedBody):
		return http.StatusUnprocessableEntity, errorDetail{"malformed_body", publicMessage(err)}
	case errors.Is(err, domainerr.ErrInvalid):
		return http.StatusBadRequest, errorDetail{"bad_request", publicMessage(err)}
	case errors.As(err, &he):
		return he.Code, errorDetail{codeFor(he.Code), fmt.Sprint(he.Message)}
	}
	return http.StatusInternalServerError, errorDetail{"internal_error", "internal error"}
}

// publicMessage is err's text with any document source path left out.
func publicMessage(err error) string {
	msg := err.Error()
	var de *domainerr.DocumentError
	if errors.As(err, &de) {
		msg = strings.Replace(msg, de.Error(), de.Reason(), 1)
	}
	return msg
}

func codeFor(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusUnprocessableEntity:
		return "unprocessable"
	}
	if status >= 500 {
		return "internal_error"
	}
	return "error"
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, detail := classify(err)
	switch {
	case status >= http.StatusInternalServerError:
		s.log.Error("request error",
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", status),
			zap.Error(err),
		)
	case status == http.StatusUnprocessableEntity:
		s.log.Warn("document rejected",
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorBody{Error: detail})
	}
	if err != nil {
		s.log.Warn("failed to write error response", zap.Error(err))
	}
}
