// cmd/pageforge/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/zapr"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/NissesSenap/pageforge/pkg/api"
	"github.com/NissesSenap/pageforge/pkg/pageforge"
)

func main() {
	// Load .env file if present; real environments set variables directly.
	_ = godotenv.Load()

	var cfg pageforge.Config
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLog.Sync() }()
	log := zapr.NewLogger(zapLog)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = api.Run(ctx, api.Options{
		ListenAddr:           cfg.ListenAddr,
		SharedSecret:         cfg.SharedSecret,
		GithubToken:          cfg.GithubToken,
		GithubAPIURL:         cfg.GithubAPIURL,
		GithubOwner:          cfg.GithubOwner,
		GithubAppID:          cfg.GithubAppID,
		GithubInstallationID: cfg.GithubInstallationID,
		GithubPrivateKeyPath: cfg.GithubPrivateKeyPath,
		PollAttempts:         cfg.PollAttempts,
		PollInterval:         cfg.PollInterval,
		CallbackAttempts:     cfg.CallbackAttempts,
		CallbackBaseDelay:    cfg.CallbackBaseDelay,
		Logger:               log,
	})
	if err != nil {
		log.Error(err, "pageforge exited with error")
		os.Exit(1)
	}
}
