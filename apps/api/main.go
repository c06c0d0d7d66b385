// Command api serves the in-memory reference Aula Virtual API for local development.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	echoapi "github.com/trezcool/aulavirtual/apps/api/echo"
	"github.com/trezcool/aulavirtual/core"
	emailsvc "github.com/trezcool/aulavirtual/services/email"
	logsvc "github.com/trezcool/aulavirtual/services/logger"
	inmemdb "github.com/trezcool/aulavirtual/storage/database/inmem"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	db := inmemdb.Open(core.SystemClock)
	seeded, err := inmemdb.Seed(db)
	if err != nil {
		logger.Fatal(fmt.Sprintf("seeding database: %v", err), err)
	}
	logger.Info(fmt.Sprintf("Seeded %s, %s, %s & %s (password %q); enrollment code %q",
		seeded.Admin.Email, seeded.Teacher.Email, seeded.Editor.Email, seeded.Student.Email,
		inmemdb.DevPassword, seeded.EnrollmentCode))

	mailSvc := emailsvc.NewService(conf, logger)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(&echoapi.Options{
		Address:         conf.Server.Address,
		Debug:           conf.Debug,
		TestMode:        conf.TestMode,
		AppName:         conf.AppName,
		SecretKey:       conf.Server.SecretKey,
		JWTExpiration:   conf.Server.JWTExpirationDelta,
		FrontendBaseURL: conf.Server.FrontendBaseURL,
		DB:              db,
		Mailer:          mailSvc,
		Logger:          logger,
	})

	serverDone := make(chan struct{})
	go func() {
		server.Start()
		close(serverDone)
	}()

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case <-serverDone:
		logger.Error("server stopped unexpectedly")

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
