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
	"time"

	"github.com/2beens/gymcycle/internal"
	"github.com/2beens/gymcycle/internal/config"
	"github.com/2beens/gymcycle/internal/logging"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	secrets := secretsFromEnv()
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.Environment == "production",
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        secrets.sentryDSN,
		SentryServerName: "gymcycle-service",
	})
	secrets.check(cfg)

	log.Debugf("using port: %d, logs path: [%s]", cfg.Port, cfg.LogsPath)
	log.Debugf("using storage: [%s], timezone: [%s]", cfg.Storage, cfg.Timezone)

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			AppSecret:               secrets.appSecret,
			VersionInfo:             versionInfo,
			PostgresUser:            secrets.postgresUser,
			PostgresPassword:        secrets.postgresPassword,
			RedisPassword:           secrets.redisPassword,
			HoneycombTracingEnabled: secrets.honeycombEnabled,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	if err := server.Serve(cfg.Host, cfg.Port); err != nil {
		log.Fatalf("serve: %s", err)
	}

	<-ctx.Done()
	log.Warnln("stop signal received, shutting down ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.GracefulShutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown: %s", err)
	}
}

// envSecrets are the values kept out of config.toml.
type envSecrets struct {
	appSecret        string
	redisPassword    string
	postgresUser     string
	postgresPassword string
	sentryDSN        string
	honeycombEnabled bool
	honeycombApiKey  string
	otelServiceName  string
}

func secretsFromEnv() envSecrets {
	return envSecrets{
		appSecret:        os.Getenv("GYMCYCLE_APP_SECRET"),
		redisPassword:    os.Getenv("GYMCYCLE_REDIS_PASS"),
		postgresUser:     os.Getenv("GYMCYCLE_POSTGRES_USER"),
		postgresPassword: os.Getenv("GYMCYCLE_POSTGRES_PASS"),
		sentryDSN:        os.Getenv("SENTRY_DSN"),
		honeycombEnabled: os.Getenv("HONEYCOMB_ENABLED") == "true",
		honeycombApiKey:  os.Getenv("HONEYCOMB_API_KEY"),
		otelServiceName:  os.Getenv("OTEL_SERVICE_NAME"),
	}
}

// check only logs the missing values; the service still starts (e.g. local dev without auth).
func (s envSecrets) check(cfg *config.Config) {
	if s.appSecret == "" {
		log.Errorln("app secret not set, auth disabled. use GYMCYCLE_APP_SECRET")
	}
	if cfg.Storage == config.StoragePostgres {
		if s.redisPassword == "" {
			log.Errorln("redis password not set. use GYMCYCLE_REDIS_PASS")
		}
		if s.postgresPassword == "" {
			log.Warnln("postgres password not set. use GYMCYCLE_POSTGRES_PASS")
		}
	}
	if cfg.SentryEnabled && s.sentryDSN == "" {
		log.Warnln("sentry enabled but SENTRY_DSN not set")
	}
	if !s.honeycombEnabled {
		log.Debugln("honeycomb tracing disabled")
		return
	}
	if s.honeycombApiKey == "" {
		log.Warnln("HONEYCOMB_API_KEY env var not set")
	}
	if s.otelServiceName == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}
}

// tryGetLastCommitHash will try to get the last commit hash
// assumes that the built main executable is in project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(stdout)), nil
}
