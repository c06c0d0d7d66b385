package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "No autenticado")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "Credenciales incorrectas")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "Tu cuenta está desactivada. Contacta al administrador.")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "No tienes permisos para realizar esta acción")
	errInvalidAction        = echo.NewHTTPError(http.StatusBadRequest, "Acción no válida")
)

func badRequest(msg string) error { return echo.NewHTTPError(http.StatusBadRequest, msg) }
func forbidden(msg string) error  { return echo.NewHTTPError(http.StatusForbidden, msg) }
func notFound(msg string) error   { return echo.NewHTTPError(http.StatusNotFound, msg) }

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Every error body is {"detail": message}, message being a string or a field -> error map.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			if ctx.Echo().Debug {
				message = err.Error()
			}

			var usr auth.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Email = claims.Email
				usr.Role = auth.ParseRole(claims.Role)
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, echo.Map{"detail": message})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
