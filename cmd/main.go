package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	glog "github.com/labstack/gommon/log"

	"storyagent/pkg/agent"
	"storyagent/pkg/config"
	"storyagent/pkg/inference"
	"storyagent/pkg/server"
	"storyagent/pkg/store"
	"storyagent/pkg/storycontext"
	"storyagent/pkg/utils"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer done()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatal("failed to open store", "err", err)
	}
	defer st.Close()

	backend, err := inference.New(ctx, cfg.Backend)
	if err != nil {
		log.Fatal("failed to create generation backend", "err", err)
	}

	a := agent.New(storycontext.NewBuilder(st), backend)
	srv := server.NewServer(a, cfg.Store.ProjectID)
	if level <= log.DebugLevel {
		srv.Echo.Logger.SetLevel(glog.DEBUG)
	} else {
		srv.Echo.Logger.SetLevel(glog.INFO)
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "err", err)
		}
		close(finishedShutDown)
	}()

	if err := srv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "err", err)
		done()
	}
	<-finishedShutDown
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	if cfg.Fixture != "" {
		if !utils.Exists(cfg.Fixture) {
			return nil, errors.New("store fixture " + cfg.Fixture + " does not exist")
		}
		m, err := store.LoadMemory(cfg.Fixture)
		if err != nil {
			return nil, err
		}
		log.Info("using in-memory store", "fixture", cfg.Fixture)
		return m, nil
	}

	if cfg.EmulatorHost != "" {
		if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.EmulatorHost); err != nil {
			return nil, err
		}
		log.Info("using firestore emulator", "host", cfg.EmulatorHost)
	}
	return store.NewFirestore(ctx, cfg.ProjectID, cfg.Collection)
}
