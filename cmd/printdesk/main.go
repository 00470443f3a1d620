package main

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/wellywell/printdesk/internal/backend"
	"github.com/wellywell/printdesk/internal/compress"
	"github.com/wellywell/printdesk/internal/config"
	"github.com/wellywell/printdesk/internal/dashboard"
	"github.com/wellywell/printdesk/internal/db"
	"github.com/wellywell/printdesk/internal/handlers"
	"github.com/wellywell/printdesk/internal/refresh"
	"github.com/wellywell/printdesk/internal/router"
	"github.com/wellywell/printdesk/internal/store"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	database, err := db.NewDatabase(conf.DatabaseDSN)
	if err != nil {
		panic(err)
	}

	client, err := backend.NewClient(conf.OrderAPIAddress, conf.OrderAPIKey)
	if err != nil {
		panic(err)
	}

	orderStore := store.NewStore(client, conf.PageSize)
	engine := dashboard.NewEngine(orderStore, client, database)

	scheduler := refresh.NewScheduler(conf.RefreshInterval, conf.PauseWindow, engine.RefreshTick)
	engine.AttachScheduler(scheduler)

	ctx := context.Background()
	engine.LoadSettings(ctx)

	// RefreshTick, not ForceRefresh: the startup fill is nobody's
	// activity and must not delay the first scheduled refresh
	if err := engine.RefreshTick(ctx); err != nil {
		// stale-but-present has nothing to show yet; the first
		// successful refresh fills the page
		logger.Errorf("initial page load failed: %s", err.Error())
	}

	go scheduler.Run(ctx)

	handlerSet := handlers.NewHandlerSet(conf.Secret, conf.AuthCookieExpiresIn, database, engine)

	r := router.NewRouter(conf, handlerSet, compress.RequestUngzipper{})

	err = r.ListenAndServe()
	if err != nil {
		panic(err)
	}
}
