package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tracetime/internal/app"
	"tracetime/internal/database"
	"tracetime/internal/infrastructure/logging"
	"tracetime/internal/platform"
	"tracetime/internal/repository"
	"tracetime/internal/server"
	"tracetime/internal/settings"
)

func main() {
	silent := flag.Bool("silent", false, "start in the tray without opening the dashboard")
	dashboard := flag.Bool("dashboard", false, "show the terminal dashboard instead of tracking")
	addr := flag.String("addr", "", "dashboard listen address (default "+server.DefaultAddr+")")
	flag.Parse()

	logger := logging.NewDefaultLogger()

	cfg := database.DefaultConfig()
	cfg.LoadFromEnvironment()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid database configuration: %v\n", err)
		os.Exit(1)
	}

	db := database.NewSQLiteService(logger)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err := db.Connect(ctx, cfg)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open activity log: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := repository.NewSQLiteActivityRepository(db, logger)

	if *dashboard {
		if err := runDashboard(repo); err != nil {
			fmt.Fprintf(os.Stderr, "dashboard error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	store := settings.NewStore(logger)
	if err := store.SetAutostart(true); err != nil {
		logger.Warn("Could not register autostart", "error", err)
	}

	application := app.New(platform.NewProbe(), repo, store, logger)
	application.Start()
	defer application.Stop()

	srv := server.New(application, store, logger, *addr)
	srv.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	dashboardURL := "http://" + srv.Addr()
	if !*silent {
		if err := app.OpenBrowser(dashboardURL); err != nil {
			logger.Warn("Could not open dashboard", "error", err)
		}
	}

	// Blocks until Quit is chosen from the tray menu.
	tray := app.NewTray(application, dashboardURL, trayIcon(), logger, func() {})
	tray.Run()
}

// trayIcon loads the .ico shipped next to the binary, if any.
func trayIcon() []byte {
	exe, err := os.Executable()
	if err != nil {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(exe), "icon.ico"))
	if err != nil {
		return nil
	}
	return data
}
