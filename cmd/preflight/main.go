// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hamed0406/statuswidget/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()

	u, err := url.ParseRequestURI(cfg.HealthURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		fail("HEALTH_URL must be an absolute http(s) URL, got " + cfg.HealthURL)
	}
	if strings.TrimSpace(os.Getenv("HEALTH_URL")) == "" {
		warn("HEALTH_URL empty; using default " + config.DefaultHealthURL)
	} else {
		ok("HEALTH_URL=" + cfg.HealthURL)
	}
	ok(fmt.Sprintf("poll every %s, probe timeout %s", cfg.PollInterval, cfg.ProbeTimeout))
	if cfg.ProbeTimeout >= cfg.PollInterval {
		warn("PROBE_TIMEOUT_MS >= POLL_INTERVAL_MS; slow probes will overlap and late ones are dropped.")
	}

	switch cfg.StorageBackend {
	case "memory":
		warn("STORAGE_BACKEND=memory; history is lost on restart.")
	case "file":
		ok("STORAGE_DIR=" + cfg.StorageDir)
	case "postgres":
		if cfg.DatabaseURL == "" {
			fail("STORAGE_BACKEND=postgres but DATABASE_URL is empty.")
		}
		ok("DATABASE_URL present")
	case "redis":
		ok("REDIS_ADDR=" + cfg.RedisAddr)
	default:
		fail("unknown STORAGE_BACKEND " + cfg.StorageBackend + " (want file, memory, postgres or redis)")
	}

	if cfg.SlackWebhook == "" {
		warn("SLACK_WEBHOOK_URL empty; no alerts on status changes.")
	} else {
		ok("SLACK_WEBHOOK_URL present")
	}
	if cfg.RateLimitRPM == 0 {
		warn("RATE_LIMIT_RPM=0; widget routes are not rate limited.")
	}

	ok("preflight passed")
}
