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

package e2e

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NissesSenap/pageforge/pkg/api"
)

const sharedSecret = "e2e-secret"

// githubFake emulates the slice of the GitHub REST API the flow touches.
type githubFake struct {
	mu         sync.Mutex
	putPaths   []string
	repos      []string
	pagesCalls int
	pagesLive  bool
	srv        *httptest.Server
}

func newGithubFake() *githubFake {
	f := &githubFake{pagesLive: true}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/user":
			_ = json.NewEncoder(w).Encode(map[string]string{"login": "e2e-bot"})
		case r.Method == http.MethodPost && r.URL.Path == "/user/repos":
			var body struct {
				Name string `json:"name"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.repos = append(f.repos, body.Name)
			w.WriteHeader(http.StatusCreated)
			_, _ = fmt.Fprintf(w, `{"name":%q}`, body.Name)
		case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/contents/"):
			path := strings.SplitN(r.URL.Path, "/contents/", 2)[1]
			f.putPaths = append(f.putPaths, path)
			w.WriteHeader(http.StatusCreated)
			_, _ = fmt.Fprintf(w, `{"commit":{"sha":"e2e-sha-%d"}}`, len(f.putPaths))
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/pages"):
			f.pagesCalls++
			if f.pagesLive {
				_ = json.NewEncoder(w).Encode(map[string]string{"html_url": "https://e2e-bot.github.io/live/"})
				return
			}
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return f
}

func (f *githubFake) snapshot() ([]string, []string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.repos...), append([]string(nil), f.putPaths...), f.pagesCalls
}

var _ = Describe("Deployment flow", func() {
	var (
		gh        *githubFake
		apiServer *httptest.Server
	)

	BeforeEach(func() {
		gh = newGithubFake()

		router, err := api.NewRouter(api.Options{
			SharedSecret:      sharedSecret,
			GithubToken:       "e2e-token",
			GithubAPIURL:      gh.srv.URL,
			PollAttempts:      3,
			PollInterval:      time.Millisecond,
			CallbackAttempts:  4,
			CallbackBaseDelay: time.Millisecond,
			Logger:            logr.Discard(),
		})
		Expect(err).NotTo(HaveOccurred())
		apiServer = httptest.NewServer(router)

		DeferCleanup(func() {
			apiServer.Close()
			gh.srv.Close()
		})
	})

	post := func(body map[string]any) (*http.Response, map[string]any) {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		resp, err := http.Post(apiServer.URL+"/request", "application/json", bytes.NewReader(data))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		var decoded map[string]any
		Expect(json.NewDecoder(resp.Body).Decode(&decoded)).To(Succeed())
		return resp, decoded
	}

	okServer := func() *httptest.Server {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		DeferCleanup(srv.Close)
		return srv
	}

	It("provisions, publishes, and reports a full deployment", func() {
		var evalMu sync.Mutex
		var evalBodies []map[string]any
		eval := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			evalMu.Lock()
			evalBodies = append(evalBodies, body)
			evalMu.Unlock()
			w.WriteHeader(http.StatusOK)
		}))
		DeferCleanup(eval.Close)

		attachment := base64.StdEncoding.EncodeToString([]byte("pixels"))
		resp, result := post(map[string]any{
			"secret":         sharedSecret,
			"email":          "dev@example.com",
			"task":           "demo/captcha",
			"nonce":          "nonce-1",
			"evaluation_url": eval.URL,
			"attachments": []map[string]string{
				{"name": "sample.png", "url": "data:image/png;base64," + attachment},
			},
		})

		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(result["ok"]).To(BeTrue())
		Expect(result["repo_url"]).To(Equal("https://github.com/e2e-bot/demo-captcha"))
		Expect(result["pages_url"]).To(Equal("https://e2e-bot.github.io/live/"))
		Expect(result["commit_sha"]).To(Equal("e2e-sha-5"))

		repos, putPaths, _ := gh.snapshot()
		Expect(repos).To(Equal([]string{"demo-captcha"}))
		Expect(putPaths).To(Equal([]string{
			"LICENSE", "README.md", ".github/workflows/pages.yml", "index.html", "sample.png",
		}))

		evalMu.Lock()
		defer evalMu.Unlock()
		Expect(evalBodies).To(HaveLen(1))
		Expect(evalBodies[0]["nonce"]).To(Equal("nonce-1"))
		Expect(evalBodies[0]["repo_url"]).To(Equal("https://github.com/e2e-bot/demo-captcha"))
	})

	It("rejects a bad secret without touching GitHub", func() {
		resp, result := post(map[string]any{
			"secret":         "wrong",
			"email":          "dev@example.com",
			"task":           "demo",
			"nonce":          "n",
			"evaluation_url": "http://example.com/eval",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		Expect(result["error"]).To(Equal("invalid secret"))

		repos, putPaths, _ := gh.snapshot()
		Expect(repos).To(BeEmpty())
		Expect(putPaths).To(BeEmpty())
	})

	It("falls back to the constructed Pages URL when the site never goes live", func() {
		gh.pagesLive = false
		eval := okServer()

		resp, result := post(map[string]any{
			"secret":         sharedSecret,
			"email":          "dev@example.com",
			"task":           "slow-pages",
			"nonce":          "n",
			"evaluation_url": eval.URL,
		})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(result["pages_url"]).To(Equal("https://e2e-bot.github.io/slow-pages/"))

		_, _, pagesCalls := gh.snapshot()
		Expect(pagesCalls).To(Equal(3))
	})

	It("retries the callback and still answers the caller when it keeps failing", func() {
		var mu sync.Mutex
		var attempts int
		eval := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			mu.Lock()
			attempts++
			mu.Unlock()
			w.WriteHeader(http.StatusBadGateway)
		}))
		DeferCleanup(eval.Close)

		resp, result := post(map[string]any{
			"secret":         sharedSecret,
			"email":          "dev@example.com",
			"task":           "flaky-eval",
			"nonce":          "n",
			"evaluation_url": eval.URL,
		})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(result["ok"]).To(BeTrue())
		Expect(result["warnings"]).To(HaveLen(1))

		mu.Lock()
		defer mu.Unlock()
		Expect(attempts).To(Equal(4))
	})

	It("drops malformed attachments but publishes the fixed set", func() {
		eval := okServer()

		resp, result := post(map[string]any{
			"secret":         sharedSecret,
			"email":          "dev@example.com",
			"task":           "bad-attachment",
			"nonce":          "n",
			"evaluation_url": eval.URL,
			"attachments": []map[string]string{
				{"name": "x.txt", "url": "not-a-data-uri"},
			},
		})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(result["warnings"]).To(HaveLen(1))

		_, putPaths, _ := gh.snapshot()
		Expect(putPaths).To(Equal([]string{
			"LICENSE", "README.md", ".github/workflows/pages.yml", "index.html",
		}))
	})
})
