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

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"
)

// callbackSender delivers result payloads to the caller's evaluation URL with
// exponential backoff. Success is strictly HTTP 200.
type callbackSender struct {
	httpClient   *http.Client
	maxAttempts  uint64
	initialDelay time.Duration
	log          logr.Logger
}

func newCallbackSender(log logr.Logger, maxAttempts int, initialDelay time.Duration) *callbackSender {
	return &callbackSender{
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		maxAttempts:  uint64(maxAttempts),
		initialDelay: initialDelay,
		log:          log,
	}
}

// deliver POSTs the payload to url, retrying with doubling delays until it
// gets a 200, runs out of attempts, or ctx is cancelled.
func (s *callbackSender) deliver(ctx context.Context, url string, payload ResultPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling callback payload: %w", err)
	}

	attempt := 0
	op := func() error {
		attempt++
		if err := s.post(ctx, url, body); err != nil {
			s.log.Info("callback attempt failed", "url", url, "attempt", attempt, "reason", err.Error())
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.initialDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = s.initialDelay << 5
	bo.MaxElapsedTime = 0 // bounded by attempt count, not wall clock

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, s.maxAttempts-1), ctx)); err != nil {
		return fmt.Errorf("callback to %s failed after %d attempts: %w", url, attempt, err)
	}
	return nil
}

func (s *callbackSender) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending callback: %w", err)
	}
	defer func() {
		// Drain response body to enable HTTP keep-alive connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	return nil
}
