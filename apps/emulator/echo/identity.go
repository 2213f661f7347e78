package echoapi

import (
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campuscopilot/core"
	remotesvc "github.com/trezcool/campuscopilot/services/remote"
)

type credentialsForm struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

func (f *credentialsForm) Validate(validate *validator.Validate, translator ut.Translator) error {
	f.Email = strings.ToLower(core.CleanString(f.Email))
	return core.TranslateFieldErrors(validate.Struct(f), translator)
}

type identityApi struct {
	idp        core.IdentityProvider
	auth       *authenticator
	validate   *validator.Validate
	translator ut.Translator
}

func registerIdentityAPI(
	g *echo.Group,
	idp core.IdentityProvider,
	auth *authenticator,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := identityApi{
		idp:        idp,
		auth:       auth,
		validate:   validate,
		translator: translator,
	}

	ig := g.Group("/identity")
	ig.POST("/signup", api.signUp)
	ig.POST("/signin", api.signIn)
}

func (api *identityApi) bind(ctx echo.Context) (credentialsForm, error) {
	var data credentialsForm
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to credentialsForm")
	}
	return data, data.Validate(api.validate, api.translator)
}

func (api *identityApi) respond(ctx echo.Context, code int, uid, email string) error {
	token, err := api.auth.GenerateToken(uid, email)
	if err != nil {
		return err
	}
	return ctx.JSON(code, remotesvc.AuthResponse{UID: uid, Token: token})
}

func (api *identityApi) signUp(ctx echo.Context) error {
	data, err := api.bind(ctx)
	if err != nil {
		return err
	}
	uid, err := api.idp.SignUp(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}
	return api.respond(ctx, http.StatusCreated, uid, data.Email)
}

func (api *identityApi) signIn(ctx echo.Context) error {
	data, err := api.bind(ctx)
	if err != nil {
		return err
	}
	uid, err := api.idp.SignIn(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}
	return api.respond(ctx, http.StatusOK, uid, data.Email)
}
