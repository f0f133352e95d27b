package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hamed0406/statuswidget/internal/config"
	"github.com/hamed0406/statuswidget/internal/logging"
	"github.com/hamed0406/statuswidget/internal/repo/backend"
	"github.com/hamed0406/statuswidget/internal/scheduler"
	"github.com/hamed0406/statuswidget/internal/view"
	"github.com/hamed0406/statuswidget/internal/widget"
)

// Terminal version of the widget: prints a status line with the sparkline
// after every check until interrupted. An optional argument overrides HEALTH_URL.
func main() {
	cfg := config.FromEnv()
	if len(os.Args) > 1 {
		cfg.HealthURL = os.Args[1]
	}

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStorage()

	w, err := widget.New(cfg, logger, storage, widget.Options{})
	if err != nil {
		log.Fatal(err)
	}
	w.Poller.Subscribe(func(s scheduler.Snapshot) {
		fmt.Println(view.StatusLine(s.Endpoint, s.History, s.LastChecked))
	})

	fmt.Printf("Watching %s every %s (Ctrl+C to quit)\n", cfg.HealthURL, cfg.PollInterval)
	if err := w.Poller.Run(ctx); err != nil {
		log.Fatal(err)
	}
	w.Transitions.Wait()
}
