package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/campuscopilot/apps/emulator/echo"
	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/user"
	"github.com/trezcool/campuscopilot/storage/database"
	dummydb "github.com/trezcool/campuscopilot/storage/database/dummy"
	"github.com/trezcool/campuscopilot/storage/database/notify"
	"github.com/trezcool/campuscopilot/storage/database/sqldoc"
)

type backend struct {
	docs  core.DocumentStore
	idp   core.IdentityProvider
	close func() error
}

// openBackend opens the in-memory backend or the configured database, migrated and
// seeded with the demo accounts.
func (cli *commandLine) openBackend(ctx context.Context, memory bool) (backend, error) {
	if memory {
		db, err := dummydb.Open()
		if err != nil {
			return backend{}, err
		}
		if err = dummydb.SeedDemoAccounts(db); err != nil {
			return backend{}, err
		}
		docs := dummydb.NewDocumentStore(db)
		if err = dummydb.SeedDemoProfiles(ctx, docs); err != nil {
			return backend{}, err
		}
		return backend{docs: docs, idp: dummydb.NewIdentityProvider(db), close: func() error { return nil }}, nil
	}

	engine := cli.conf.Database.Engine
	db, err := database.Open(ctx, cli.conf.Database)
	if err != nil {
		return backend{}, err
	}
	if err = database.Migrate(ctx, db, engine); err != nil {
		_ = db.Close()
		return backend{}, err
	}
	docs := sqldoc.NewDocumentStore(db, engine, notify.NewHub())
	if err = sqldoc.SeedDemoAccounts(ctx, db, engine, docs); err != nil {
		_ = db.Close()
		return backend{}, err
	}
	return backend{docs: docs, idp: sqldoc.NewIdentityProvider(db, engine), close: db.Close}, nil
}

func (cli *commandLine) serve(ctx context.Context, memory bool) error {
	conf, logger := cli.conf, cli.logger

	b, err := cli.openBackend(ctx, memory)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	logger.Info(fmt.Sprintf("Emulator initializing : version %q", conf.Build))
	defer logger.Info("Emulator stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Docs:       b.docs,
		Identity:   b.idp,
		Validate:   validate,
		Translator: translator,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		return fmt.Errorf("server error: %w", err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				return fmt.Errorf("could not force stop server: %w", err)
			}
		}
	}
	return nil
}
