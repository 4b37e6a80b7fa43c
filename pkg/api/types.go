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

// DeployRequest is the JSON body for POST /request.
type DeployRequest struct {
	Secret        string       `json:"secret"`
	Email         string       `json:"email"`
	Task          string       `json:"task"`
	Nonce         string       `json:"nonce"`
	EvaluationURL string       `json:"evaluation_url"`
	Round         int          `json:"round,omitempty"`
	Attachments   []Attachment `json:"attachments,omitempty"`
}

// Attachment is a caller-supplied file: a name plus a base64 data URI.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ResultPayload is the deployment summary. It is both the callback body sent
// to the evaluation URL and the core of the HTTP response.
type ResultPayload struct {
	Email     string `json:"email"`
	Task      string `json:"task"`
	Round     int    `json:"round"`
	Nonce     string `json:"nonce"`
	RepoURL   string `json:"repo_url"`
	CommitSHA string `json:"commit_sha"`
	PagesURL  string `json:"pages_url"`
}

// DeployResponse is the JSON response for POST /request. Warnings carry
// best-effort degradations (dropped attachments, failed callback delivery)
// that did not fail the request.
type DeployResponse struct {
	OK bool `json:"ok"`
	ResultPayload
	Warnings []string `json:"warnings,omitempty"`
}

// InfoResponse is the JSON response for GET /.
type InfoResponse struct {
	OK  bool   `json:"ok"`
	Use string `json:"use"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
