package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/user"
	remotesvc "github.com/trezcool/campuscopilot/services/remote"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

var kindStatus = map[core.Kind]int{
	core.KindValidation:    http.StatusBadRequest,
	core.KindAuth:          http.StatusUnauthorized,
	core.KindNotFound:      http.StatusNotFound,
	core.KindAlreadyExists: http.StatusConflict,
	core.KindNetwork:       http.StatusBadGateway,
	core.KindStorage:       http.StatusInternalServerError,
	core.KindInternal:      http.StatusInternalServerError,
}

func statusKind(code int) core.Kind {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusUnsupportedMediaType:
		return core.KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return core.KindAuth
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return core.KindNotFound
	case http.StatusConflict:
		return core.KindAlreadyExists
	}
	return core.KindInternal
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders our errors as
// remotesvc.ErrorResponse.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code int
			body remotesvc.ErrorResponse
		)

		var (
			httpErr *echo.HTTPError
			typed   *core.Error
			vErr    *core.ValidationError
		)
		switch {
		case errors.As(err, &httpErr):
			if httpErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
			} else {
				if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
					httpErr = herr
				}
				code = httpErr.Code
			}
			body.Kind = statusKind(code).String()
			if msg, ok := httpErr.Message.(string); ok {
				body.Error = msg
			} else {
				body.Error = http.StatusText(code)
			}
		case errors.As(err, &vErr):
			code = http.StatusBadRequest
			body.Kind = core.KindValidation.String()
			body.Error = vErr.Error()
			body.Fields = vErr.Fields
		case errors.As(err, &typed):
			code = kindStatus[typed.Kind]
			body.Kind = typed.Kind.String()
			body.Error = core.Message(err)
		default:
			code = http.StatusInternalServerError
			body.Kind = core.KindInternal.String()
			body.Error = http.StatusText(code)
		}

		if code >= http.StatusInternalServerError {
			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Email = claims.Email
			}
			logger.Error(http.StatusText(code), errors.Wrap(err, ctx.Path()), usr)
			if ctx.Echo().Debug {
				body.Error = err.Error()
			} else {
				body.Error = http.StatusText(code)
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
