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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/NissesSenap/pageforge/pkg/github"
	"github.com/NissesSenap/pageforge/pkg/site"
)

// deployHandler holds dependencies for the deployment endpoint.
type deployHandler struct {
	gh           *github.Client // nil when credentials are missing
	owner        string         // optional override; resolved via /user otherwise
	secret       string
	callback     *callbackSender
	pollAttempts int
	pollInterval time.Duration
	log          logr.Logger
}

// deploy handles POST /request: validate, provision the repository, publish
// the file set, wait for Pages, deliver the callback, respond.
func (h *deployHandler) deploy(w http.ResponseWriter, r *http.Request) {
	log := h.log

	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // 10 MiB
	var req DeployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if h.gh == nil || h.secret == "" {
		deploymentsTotal.WithLabelValues("failed").Inc()
		writeError(w, http.StatusInternalServerError, "missing server configuration", "GitHub credentials or shared secret not configured")
		return
	}

	if req.Secret != h.secret {
		deploymentsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusForbidden, "invalid secret", "")
		return
	}

	if missing := missingFields(req); len(missing) > 0 {
		deploymentsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "missing required fields", strings.Join(missing, ", "))
		return
	}
	if err := validateCallbackURL(req.EvaluationURL); err != nil {
		deploymentsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "invalid evaluation_url", err.Error())
		return
	}

	round := req.Round
	if round == 0 {
		round = 1
	}

	ctx := r.Context()

	owner := h.owner
	if owner == "" {
		var err error
		owner, err = h.gh.CurrentUser(ctx)
		if err != nil {
			log.Error(err, "owner lookup failed")
			deploymentsTotal.WithLabelValues("failed").Inc()
			writeError(w, http.StatusInternalServerError, "owner lookup failed", err.Error())
			return
		}
	}

	repo := strings.ReplaceAll(req.Task, "/", "-")
	if err := h.gh.CreateRepo(ctx, repo); err != nil {
		log.Error(err, "repository creation failed", "repo", repo)
		deploymentsTotal.WithLabelValues("failed").Inc()
		writeError(w, http.StatusInternalServerError, "repository creation failed", err.Error())
		return
	}

	attachments := make([]site.Attachment, 0, len(req.Attachments))
	for _, att := range req.Attachments {
		attachments = append(attachments, site.Attachment{Name: att.Name, URL: att.URL})
	}
	files, warnings := site.Files(owner, time.Now().UTC().Year(), attachments)

	var lastCommit string
	for _, f := range files {
		sha, err := h.gh.PutFile(ctx, owner, repo, f.Path, site.Branch, f.Content, "add "+f.Path)
		if err != nil {
			log.Error(err, "file publish failed", "repo", repo, "path", f.Path)
			deploymentsTotal.WithLabelValues("failed").Inc()
			writeError(w, http.StatusInternalServerError, "file publish failed", err.Error())
			return
		}
		lastCommit = sha
	}

	pagesURL, live := h.gh.WaitForPages(ctx, owner, repo, h.pollAttempts, h.pollInterval)
	if live {
		pagesPollResults.WithLabelValues("live").Inc()
	} else {
		pagesPollResults.WithLabelValues("timeout").Inc()
		pagesURL = fmt.Sprintf("https://%s.github.io/%s/", owner, repo)
		log.Info("pages URL not live within budget, using constructed default", "repo", repo, "pagesURL", pagesURL)
	}

	payload := ResultPayload{
		Email:     req.Email,
		Task:      req.Task,
		Round:     round,
		Nonce:     req.Nonce,
		RepoURL:   fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		CommitSHA: lastCommit,
		PagesURL:  pagesURL,
	}

	// Delivery failure never fails the request; it is surfaced as a warning.
	if err := h.callback.deliver(ctx, req.EvaluationURL, payload); err != nil {
		log.Error(err, "callback delivery failed", "evaluationURL", req.EvaluationURL)
		callbackDeliveries.WithLabelValues("failed").Inc()
		warnings = append(warnings, fmt.Sprintf("callback delivery failed: %v", err))
	} else {
		callbackDeliveries.WithLabelValues("success").Inc()
	}

	deploymentsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, DeployResponse{OK: true, ResultPayload: payload, Warnings: warnings})
}

// missingFields returns the names of required request fields that are absent.
func missingFields(req DeployRequest) []string {
	var missing []string
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Task == "" {
		missing = append(missing, "task")
	}
	if req.Nonce == "" {
		missing = append(missing, "nonce")
	}
	if req.EvaluationURL == "" {
		missing = append(missing, "evaluation_url")
	}
	return missing
}

// validateCallbackURL rejects evaluation URLs that could not be delivered to.
func validateCallbackURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Hostname() == "" {
		return fmt.Errorf("hostname is empty")
	}
	return nil
}
