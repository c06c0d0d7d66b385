package echoapi

import (
	"net/http"
	"net/mail"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/user"
	inmemdb "github.com/trezcool/aulavirtual/storage/database/inmem"
)

const (
	contextTokenKey = "userToken"
	contextUserKey  = "user"
)

type tokenIssuer struct {
	issuer     string
	expiration time.Duration
	clock      core.Clock
	config     middleware.JWTConfig
}

func newTokenIssuer(issuer, secretKey string, expiration time.Duration, clock core.Clock) *tokenIssuer {
	return &tokenIssuer{
		issuer:     issuer,
		expiration: expiration,
		clock:      clock,
		config: middleware.JWTConfig{
			SigningKey:    []byte(secretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(auth.Claims),
		},
	}
}

func (ti *tokenIssuer) claims(usr user.User) *auth.Claims {
	now := ti.clock.Now()
	return &auth.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    ti.issuer,
			Subject:   usr.ID,
			ExpiresAt: now.Add(ti.expiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: usr.Email,
		Role:  string(usr.Role),
	}
}

// GenerateToken generates a signed JWT token string representing the user claims.
func (ti *tokenIssuer) GenerateToken(usr user.User) (string, error) {
	method := jwt.GetSigningMethod(ti.config.SigningMethod)
	token := jwt.NewWithClaims(method, ti.claims(usr))

	ss, err := token.SignedString(ti.config.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (auth.Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*auth.Claims); ok {
			return *claims, nil
		}
	}
	return auth.Claims{}, errUnauthorized
}

func getContextRole(ctx echo.Context) auth.Role {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return ""
	}
	return auth.ParseRole(claims.Role)
}

// getContextUser loads the token's user; a token for a deleted user is unauthorized.
func getContextUser(ctx echo.Context, db *inmemdb.DB) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, err
	}
	usr, err := db.GetUser(claims.Subject)
	if err != nil {
		return user.User{}, errUnauthorized
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

type authApi struct {
	*handlerDeps
	tokens          *tokenIssuer
	mailer          core.EmailService
	frontendBaseURL string
}

func registerAuthAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	deps *handlerDeps,
	tokens *tokenIssuer,
	mailer core.EmailService,
	frontendBaseURL string,
) {
	api := authApi{
		handlerDeps:     deps,
		tokens:          tokens,
		mailer:          mailer,
		frontendBaseURL: frontendBaseURL,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/register", api.register)
	ag.POST("/forgot-password", api.forgotPassword)
	ag.POST("/reset-password", api.resetPassword)

	// authed endpoints
	ag.GET("/me", api.me, jwt)
}

func (api *authApi) login(ctx echo.Context) error {
	var data user.LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	usr, err := api.db.Authenticate(data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrInvalidCredentials {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}
	if !usr.IsActive() {
		return errAccountDeactivated
	}

	token, err := api.tokens.GenerateToken(usr)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	api.logger.Info("login", map[string]interface{}{"user": usr.ID})
	return ctx.JSON(http.StatusOK, user.LoginResponse{AccessToken: token, TokenType: "bearer"})
}

// register is public self sign-up: the account is always a student.
func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	data.Role = auth.RoleStudent
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	usr, err := api.db.CreateUser(data)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrDuplicate {
			return badRequest("El email ya está registrado")
		}
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.db)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (api *authApi) forgotPassword(ctx echo.Context) error {
	var data forgotPasswordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to forgotPasswordRequest")
	}
	data.Email = core.CleanString(data.Email, true /* lower */)
	if err := core.ValidateStruct(api.validate, api.translator, &data); err != nil {
		return err
	}

	token, usr, err := api.db.CreateResetToken(data.Email)
	switch {
	case err == nil:
		api.mailer.SendMessages(&core.EmailMessage{
			To:       []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
			Subject:  "Restablecer contraseña",
			Template: core.PasswordResetTemplate,
			TemplateData: map[string]string{
				"Name":    usr.FirstName,
				"BaseURL": api.frontendBaseURL,
				"Token":   token,
			},
		})
	case errors.Cause(err) != inmemdb.ErrNotFound:
		// do not return errors to attackers
		api.logger.Error("requesting password reset", err)
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Si el email existe, recibirás instrucciones para restablecer tu contraseña.",
	})
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	var data user.PasswordReset
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordReset")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	if err := api.db.ResetPassword(data.Token, data.NewPassword); err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return badRequest("Token inválido o expirado")
		}
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Contraseña actualizada correctamente"})
}
