// Package echoapi is the in-memory reference implementation of the Aula Virtual REST API.
package echoapi

import (
	"context"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/evaluation"
	"github.com/trezcool/aulavirtual/core/user"
	inmemdb "github.com/trezcool/aulavirtual/storage/database/inmem"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Debug          bool
		TestMode       bool

		AppName         string
		SecretKey       string
		JWTExpiration   time.Duration
		FrontendBaseURL string
		CORSOrigins     []string

		DB     *inmemdb.DB
		Mailer core.EmailService
		Logger core.Logger
		Clock  core.Clock
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts       *Options
		app        *echo.Echo
		tokens     *tokenIssuer
		validate   *validator.Validate
		translator ut.Translator
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Logger == nil {
		opts.Logger = core.NopLogger
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock
	}
	if opts.Mailer == nil {
		opts.Mailer = discardMailer{}
	}
	if opts.JWTExpiration == 0 {
		opts.JWTExpiration = 24 * time.Hour
	}
	validate, translator := core.NewValidator(user.InitValidators, evaluation.InitValidators)

	s := &server{
		opts:       opts,
		app:        echo.New(),
		tokens:     newTokenIssuer(opts.AppName, opts.SecretKey, opts.JWTExpiration, opts.Clock),
		validate:   validate,
		translator: translator,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.opts.Debug || s.opts.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: origins, AllowCredentials: true}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.translator)
	s.app.Debug = s.opts.Debug

	g := s.app.Group("/api")
	g.GET("", home)
	g.GET("/health", health)

	jwt := middleware.JWTWithConfig(s.tokens.config)
	deps := &handlerDeps{
		db:         s.opts.DB,
		validate:   s.validate,
		translator: s.translator,
		logger:     s.opts.Logger,
	}

	registerAuthAPI(g, jwt, deps, s.tokens, s.opts.Mailer, s.opts.FrontendBaseURL)
	registerUserAPI(g, jwt, deps)
	registerCategoryAPI(g, jwt, deps)
	registerCourseAPI(g, jwt, deps)
	registerContentAPI(g, jwt, deps)
	registerEnrollmentAPI(g, jwt, deps)
	registerEvaluationAPI(g, jwt, deps)
	registerMessageAPI(g, jwt, deps)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.opts.Logger.Fatal("starting server", err)
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Aula Virtual API", "status": "running"})
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "healthy"})
}

type discardMailer struct{}

func (discardMailer) SendMessages(...*core.EmailMessage) {}

// handlerDeps is shared by every API group.
type handlerDeps struct {
	db         *inmemdb.DB
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger
}

// audit records a mutation in the logs.
func (d *handlerDeps) audit(ctx echo.Context, action, entity, id string) {
	claims, _ := getContextClaims(ctx)
	d.logger.Info("audit", map[string]interface{}{
		"action": action,
		"entity": entity,
		"id":     id,
		"user":   claims.Subject,
	})
}
