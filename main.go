package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/marcus-crane/frontpanel/config"
	"github.com/marcus-crane/frontpanel/coordinator"
	"github.com/marcus-crane/frontpanel/db"
	"github.com/marcus-crane/frontpanel/display"
	"github.com/marcus-crane/frontpanel/events"
	"github.com/marcus-crane/frontpanel/input"
	"github.com/marcus-crane/frontpanel/jobs"
	"github.com/marcus-crane/frontpanel/migrations"
	"github.com/marcus-crane/frontpanel/panel"
	"github.com/marcus-crane/frontpanel/playback"
	"github.com/marcus-crane/frontpanel/routes"
	"github.com/marcus-crane/frontpanel/views"
	"github.com/marcus-crane/frontpanel/volumio"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	logLevel := pflag.String("log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	noHardware := pflag.Bool("no-hardware", false, "run without GPIO and I2C, driving the panel over HTTP instead")
	listen := pflag.String("listen", "", "override LISTEN_ADDR")
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		fmt.Println(err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Frontpanel.LogLevel = *logLevel
	}
	if *listen != "" {
		cfg.Frontpanel.ListenAddr = *listen
	}
	if *noHardware {
		cfg.Hardware.Enabled = false
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.GetLogLevel()}))
	slog.SetDefault(logger)

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to open history store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := events.NewPublisher()
	tracker := playback.NewTracker()
	client := volumio.NewClient(cfg.Volumio.URL)

	c := coordinator.New(client, coordinator.Options{
		InactivityTimeout: cfg.InactivityTimeout(),
		GracePeriod:       cfg.GracePeriod(),
		VolumeStep:        cfg.Frontpanel.VolumeStep,
	})

	screen := display.NewFrameScreen(display.Fanout(
		display.LogFrame,
		display.Mirror(publisher, events.StreamDisplay),
	))
	deps := views.BrowserDeps{Screen: screen, Nav: c, Lister: client, Remote: client}
	c.Register(coordinator.Clock, views.NewClock(screen, c))
	c.Register(coordinator.Menu, views.NewMenu(screen, c, views.DefaultMenu))
	c.Register(coordinator.NowPlaying, views.NewNowPlaying(screen))
	c.Register(coordinator.RadioBrowser, views.NewRadioBrowser(deps))
	c.Register(coordinator.PlaylistBrowser, views.NewPlaylistBrowser(deps))

	c.AddModeChangeListener(func(m coordinator.Mode) {
		publisher.PublishJSON(events.StreamMode, map[string]any{"mode": m})
	})

	tracker.Subscribe(c.OnRemoteStateChanged)
	tracker.Subscribe(func(st playback.State) {
		publisher.PublishJSON(events.StreamState, st)
	})
	tracker.Subscribe(jobs.NewHistoryRecorder(store).Observe)

	if cfg.Hardware.Enabled {
		closeHardware, err := startHardware(ctx, cfg, c, client, tracker)
		if err != nil {
			slog.Error("Failed to start panel hardware, use the HTTP input endpoint instead", slog.String("error", err.Error()))
		} else {
			defer closeHardware()
		}
	} else {
		slog.Info("Hardware is disabled")
	}

	if err := c.Start(); err != nil {
		slog.Error("Failed to start mode coordinator", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer c.Close()

	scheduler, err := jobs.SetupInBackground(cfg.PollInterval(), client, tracker)
	if err != nil {
		slog.Error("Failed to schedule jobs", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	// If we're restarted, show whatever is playing right away
	jobs.PollState(client, tracker)

	go func() {
		err := volumio.Subscribe(ctx, cfg.PushURL(), func(st playback.State) {
			tracker.Observe(st)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Push subscription ended", slog.String("error", err.Error()))
		}
	}()

	server := &http.Server{
		Addr: cfg.Frontpanel.ListenAddr,
		Handler: routes.Register(http.NewServeMux(), routes.Dependencies{
			Panel:   c,
			Tracker: tracker,
			Store:   store,
			Events:  publisher,
		}),
	}

	go func() {
		slog.Info("Frontpanel is running", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Gracefully shutting down...")

	publisher.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shut down HTTP server", slog.String("error", err.Error()))
	}
}

func openStore(cfg config.Config) (db.Store, error) {
	if cfg.Frontpanel.DbPath == "" {
		slog.Info("No DB_PATH set, keeping play history in memory")
		return db.NewMemoryStore(), nil
	}
	store, err := db.NewSqliteStore(cfg.Frontpanel.DbPath)
	if err != nil {
		return nil, err
	}
	if err := store.ApplyMigrations(migrations.GetMigrations()); err != nil {
		store.Close()
		return nil, err
	}
	slog.Info("Initialised DB connection", slog.String("path", cfg.Frontpanel.DbPath))
	return store, nil
}

// startHardware opens the encoder GPIO pins and the I/O expander and starts
// their polling loops.
func startHardware(ctx context.Context, cfg config.Config, c *coordinator.Coordinator, remote playback.Remote, tracker *playback.Tracker) (func(), error) {
	clk, dt, sw, closeGPIO, err := input.OpenGPIO(cfg.Hardware.RotaryCLK, cfg.Hardware.RotaryDT, cfg.Hardware.RotarySW)
	if err != nil {
		return nil, err
	}
	encoder := input.NewEncoder(clk, dt, sw, c)
	go encoder.Run(ctx)

	exp, err := panel.OpenMCP23017(cfg.Hardware.I2CBus, uint16(cfg.Hardware.I2CAddress))
	if err != nil {
		slog.Error("Failed to open I/O expander, buttons and LEDs are disabled", slog.String("error", err.Error()))
		return closeGPIO, nil
	}
	p := panel.New(exp, remote, c, tracker.Current, panel.Options{
		ScanInterval:  time.Duration(cfg.Hardware.ScanMillis) * time.Millisecond,
		FlashDuration: time.Duration(cfg.Hardware.FlashMillis) * time.Millisecond,
	})
	if err := p.Init(); err != nil {
		exp.Close()
		closeGPIO()
		return nil, err
	}
	tracker.Subscribe(p.OnStateChanged)
	go p.Run(ctx)

	return func() {
		closeGPIO()
		if err := exp.Close(); err != nil {
			slog.Error("Failed to close I/O expander", slog.String("error", err.Error()))
		}
	}, nil
}
