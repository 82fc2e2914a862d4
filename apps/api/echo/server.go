package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/terakoya-app/terakoya/core"
	"github.com/terakoya-app/terakoya/core/audit"
	"github.com/terakoya-app/terakoya/core/identity"
	"github.com/terakoya-app/terakoya/core/session"
	metricsvc "github.com/terakoya-app/terakoya/services/metrics"
)

type (
	Options struct {
		Conf           *core.Config
		DisableReqLogs bool

		Validate    *validator.Validate
		Translator  ut.Translator
		Logger      core.Logger
		Metrics     *metricsvc.Collector
		Refresher   *session.Refresher
		AuthBackend session.Backend
		Identities  identity.Repository
		AdminDir    identity.AdminDirectory
		Audit       *audit.Recorder
		EmailSvc    core.EmailService
		Billing     core.BillingPortal
		Reports     core.ReportGenerator
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Validate == nil {
		opts.Validate, opts.Translator = core.NewValidator()
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	// ingress control: locale canonicalization and session renewal run
	// before routing, on every request
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Pre(requestRouter(conf, s.opts.Refresher, s.opts.Metrics))

	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(statusMetrics(s.opts.Metrics))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, func() { _ = s.app.Close() })
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/healthz", healthz)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	registerPages(s.app, s.opts)
	registerAuthAPI(s.app.Group("/api/auth"), s.opts)
	registerAdminAPI(s.app.Group("/api/admin"), s.opts)
	registerPassthroughAPI(s.app.Group("/api"), s.opts)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Conf.Server.Addr))
}

func (s *server) Stop(ctx context.Context) error {
	s.opts.Audit.Wait()
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Terakoya!")
}

func healthz(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
