/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package api implements the pageforge HTTP server: a single deployment
// endpoint that provisions a GitHub repository, publishes the site file set,
// waits for GitHub Pages, and reports the result to an evaluation callback.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NissesSenap/pageforge/pkg/github"
)

// Options configures the API server.
type Options struct {
	ListenAddr   string
	SharedSecret string

	// GitHub credentials: either a static token, or App credentials
	// (ID + installation + private key) for installation tokens.
	GithubToken          string
	GithubAPIURL         string
	GithubOwner          string // optional override; /user lookup otherwise
	GithubAppID          int64
	GithubInstallationID int64
	GithubPrivateKeyPath string

	// Pages polling budget. Zero values select the defaults (12 x 5s).
	PollAttempts int
	PollInterval time.Duration

	// Callback retry budget. Zero values select the defaults (6 attempts,
	// 1s initial delay, doubling).
	CallbackAttempts  int
	CallbackBaseDelay time.Duration

	Logger logr.Logger
}

func (o *Options) applyDefaults() {
	if o.PollAttempts == 0 {
		o.PollAttempts = 12
	}
	if o.PollInterval == 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.CallbackAttempts == 0 {
		o.CallbackAttempts = 6
	}
	if o.CallbackBaseDelay == 0 {
		o.CallbackBaseDelay = time.Second
	}
}

// NewRouter builds the HTTP handler tree. A server without GitHub credentials
// still routes; the deployment endpoint then answers 500 until configured.
func NewRouter(opts Options) (http.Handler, error) {
	opts.applyDefaults()
	log := opts.Logger.WithName("api")

	var gh *github.Client
	switch {
	case opts.GithubAppID != 0:
		var err error
		gh, err = github.NewAppClient(opts.GithubAPIURL, opts.GithubAppID, opts.GithubInstallationID, opts.GithubPrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("building App client: %w", err)
		}
		log.Info("GitHub App credentials configured", "appID", opts.GithubAppID)
	case opts.GithubToken != "":
		var err error
		gh, err = github.NewTokenClient(opts.GithubAPIURL, opts.GithubToken)
		if err != nil {
			return nil, fmt.Errorf("building GitHub client: %w", err)
		}
	}

	handler := &deployHandler{
		gh:           gh,
		owner:        opts.GithubOwner,
		secret:       opts.SharedSecret,
		callback:     newCallbackSender(log.WithName("callback"), opts.CallbackAttempts, opts.CallbackBaseDelay),
		pollAttempts: opts.PollAttempts,
		pollInterval: opts.PollInterval,
		log:          log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", info)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(contentTypeMiddleware)
		r.Post("/request", handler.deploy)
	})

	return r, nil
}

// contentTypeMiddleware validates Content-Type header on mutating requests.
func contentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":"Content-Type must be application/json"}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Run starts the API server and blocks until ctx is cancelled or the server
// fails. Shutdown is graceful with a 10s drain budget.
func Run(ctx context.Context, opts Options) error {
	log := opts.Logger.WithName("api")

	router, err := NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         opts.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // the deployment flow polls Pages in-request
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server", "addr", opts.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down API server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}
