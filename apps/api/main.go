package main

import (
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	echoapi "github.com/terakoya-app/terakoya/apps/api/echo"
	"github.com/terakoya-app/terakoya/core"
	"github.com/terakoya-app/terakoya/core/audit"
	"github.com/terakoya-app/terakoya/core/session"
	authsvc "github.com/terakoya-app/terakoya/services/auth"
	billingsvc "github.com/terakoya-app/terakoya/services/billing"
	emailsvc "github.com/terakoya-app/terakoya/services/email"
	logsvc "github.com/terakoya-app/terakoya/services/logger"
	metricsvc "github.com/terakoya-app/terakoya/services/metrics"
	reportsvc "github.com/terakoya-app/terakoya/services/report"
	"github.com/terakoya-app/terakoya/storage/database"
	sqlxrepos "github.com/terakoya-app/terakoya/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	// set up logger
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()
	if err = database.Migrate(db); err != nil {
		logger.Fatal("migrating database", err)
	}

	// set up repos & services
	userRepo := sqlxrepos.NewUserRepository(db)
	adminDir := sqlxrepos.NewAdminDirectory(db)
	auditRepo := sqlxrepos.NewAuditRepository(db)

	metrics := metricsvc.NewCollector(prometheus.DefaultRegisterer)
	authBackend := authsvc.NewJWTBackend(userRepo, conf)
	refresher := session.NewRefresher(authBackend, logger)
	auditRec := audit.NewRecorder(auditRepo, logger, metrics)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		if mailSvc, err = emailsvc.NewSendgridService(conf, logger); err != nil {
			logger.Fatal("configuring email service", err)
		}
	}

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Conf:        conf,
		Logger:      logger,
		Metrics:     metrics,
		Refresher:   refresher,
		AuthBackend: authBackend,
		Identities:  userRepo,
		AdminDir:    adminDir,
		Audit:       auditRec,
		EmailSvc:    mailSvc,
		Billing:     billingsvc.NewDummyPortal(),
		Reports:     reportsvc.NewDummyGenerator(),
	})
	app.Start()
}
