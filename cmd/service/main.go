package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/2beens/fitlife/internal"
	"github.com/2beens/fitlife/internal/config"
	"github.com/2beens/fitlife/internal/logging"
	"github.com/2beens/fitlife/pkg"

	log "github.com/sirupsen/logrus"
)

// secrets are read from the environment, never from the config file.
type secrets struct {
	redisPassword    string
	postgresPassword string
	honeycombEnabled bool
}

func readSecrets(cfg *config.Config) secrets {
	s := secrets{
		redisPassword:    os.Getenv("FITLIFE_REDIS_PASS"),
		postgresPassword: os.Getenv("FITLIFE_POSTGRES_PASS"),
		honeycombEnabled: os.Getenv("HONEYCOMB_ENABLED") == "true",
	}

	if s.redisPassword == "" && cfg.RedisEnabled() {
		log.Errorf("redis password not set. use FITLIFE_REDIS_PASS")
	}
	if s.postgresPassword == "" && cfg.RowStore == config.RowStorePostgres {
		log.Warnln("postgres password not set. use FITLIFE_POSTGRES_PASS")
	}
	if cfg.SentryEnabled && os.Getenv("SENTRY_DSN") == "" {
		log.Warnln("sentry enabled but SENTRY_DSN not set")
	}

	if !s.honeycombEnabled {
		log.Debugln("honeycomb tracing disabled")
		return s
	}
	if os.Getenv("HONEYCOMB_API_KEY") == "" {
		log.Warnln("HONEYCOMB_API_KEY env var not set")
	}
	if os.Getenv("OTEL_SERVICE_NAME") == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}
	return s
}

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev ]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	checkOnly := flag.Bool("check", false, "validate the config and exit")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %s\n", err)
		os.Exit(1)
	}
	if *checkOnly {
		fmt.Printf("config for [%s] is valid: row store %s, snapshot store %s\n", cfg.Environment, cfg.RowStore, cfg.SnapshotStore)
		return
	}

	closeLogs := logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "fitlife-service",
	})
	defer closeLogs()

	log.Warnf("---->> running in [%s] environment, port %d", cfg.Environment, cfg.Port)
	log.Debugf("using row store [%s], snapshot store [%s]", cfg.RowStore, cfg.SnapshotStore)

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	sec := readSecrets(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := internal.NewServer(ctx, internal.NewServerParams{
		Config:                  cfg,
		VersionInfo:             versionInfo,
		PostgresPassword:        sec.postgresPassword,
		RedisPassword:           sec.redisPassword,
		HoneycombTracingEnabled: sec.honeycombEnabled,
	})
	if err != nil {
		log.Errorf("new server: %s", err)
		closeLogs()
		os.Exit(1)
	}

	server.Serve(cfg.Host, cfg.Port)

	<-ctx.Done()
	log.Warnln("stop signal received, shutting down ...")

	server.GracefulShutdown()
}

// tryGetLastCommitHash assumes the binary runs from within the repo checkout.
func tryGetLastCommitHash() (string, error) {
	stdout, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(pkg.BytesToString(stdout)), nil
}
