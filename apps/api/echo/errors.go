package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errInvalidToken         = echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errBadSignature         = echo.NewHTTPError(http.StatusUnauthorized, "invalid signature")
)

var kindStatus = map[core.ErrorKind]int{
	core.KindAuthentication:  http.StatusUnauthorized,
	core.KindAuthorization:   http.StatusForbidden,
	core.KindNotFound:        http.StatusNotFound,
	core.KindInvalidState:    http.StatusConflict,
	core.KindConflict:        http.StatusConflict,
	core.KindPaymentRequired: http.StatusPaymentRequired,
}

type fieldsResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				message = m
			} else {
				message = fmt.Sprint(origErr.Message)
			}
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[fieldPath(vErr)] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fieldsResponse{Error: "validation failed", Fields: fldErrs}
		case *core.ValidationError:
			code = http.StatusBadRequest
			if len(origErr.Fields) > 0 {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fieldsResponse{Error: "validation failed", Fields: fldErrs}
			} else {
				message = origErr.Error()
			}
		case *core.KindError:
			code = kindStatus[origErr.Kind]
			if code == 0 {
				code = http.StatusInternalServerError
			}
			message = origErr.Message
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			if act := currentActor(ctx); act != nil {
				logger.Error(msg, errors.Wrap(err, msg), *act)
			} else {
				logger.Error(msg, errors.Wrap(err, msg))
			}
			if ctx.Echo().Debug {
				message = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// fieldPath is the namespace of fe without its root struct, e.g. "modules[0].title".
func fieldPath(fe validator.FieldError) string {
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok && path != "" {
		return path
	}
	return fe.Field()
}
