// pkg/pageforge/config.go
package pageforge

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for pageforge. It is built once at startup
// and immutable afterwards.
type Config struct {
	ListenAddr   string
	SharedSecret string

	// GitHub credentials: a static token, or App credentials.
	GithubToken          string
	GithubAPIURL         string
	GithubOwner          string
	GithubAppID          int64
	GithubInstallationID int64
	GithubPrivateKeyPath string

	// Pages polling budget
	PollAttempts int
	PollInterval time.Duration

	// Callback retry budget
	CallbackAttempts  int
	CallbackBaseDelay time.Duration
}

// RegisterFlags registers configuration flags. Defaults come from the
// environment so the service runs unflagged in containers.
func (c *Config) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&c.ListenAddr, "listen-addr", getEnv("LISTEN_ADDR", ":8080"), "HTTP listen address")
	f.StringVar(&c.SharedSecret, "shared-secret", os.Getenv("SHARED_SECRET"), "Shared secret callers must present")
	f.StringVar(&c.GithubToken, "github.token", os.Getenv("GH_TOKEN"), "GitHub personal access token")
	f.StringVar(&c.GithubAPIURL, "github.api-url", getEnv("GITHUB_API_URL", "https://api.github.com"), "GitHub API URL")
	f.StringVar(&c.GithubOwner, "github.owner", os.Getenv("GITHUB_OWNER"), "Acting account override (looked up via /user when empty)")
	f.Int64Var(&c.GithubAppID, "github.app-id", getEnvInt64("GITHUB_APP_ID"), "GitHub App ID (App auth instead of token)")
	f.Int64Var(&c.GithubInstallationID, "github.installation-id", getEnvInt64("GITHUB_INSTALLATION_ID"), "GitHub App installation ID")
	f.StringVar(&c.GithubPrivateKeyPath, "github.private-key", os.Getenv("GITHUB_PRIVATE_KEY_PATH"), "Path to GitHub App private key")
	f.IntVar(&c.PollAttempts, "pages.poll-attempts", 12, "Pages availability poll attempts")
	f.DurationVar(&c.PollInterval, "pages.poll-interval", 5*time.Second, "Delay between Pages polls")
	f.IntVar(&c.CallbackAttempts, "callback.attempts", 6, "Callback delivery attempts")
	f.DurationVar(&c.CallbackBaseDelay, "callback.base-delay", time.Second, "Initial callback backoff delay (doubles per attempt)")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.SharedSecret == "" {
		return errors.New("shared secret is required (SHARED_SECRET)")
	}

	appFlagsSet := c.GithubAppID != 0 || c.GithubInstallationID != 0 || c.GithubPrivateKeyPath != ""
	if appFlagsSet {
		if c.GithubAppID == 0 || c.GithubInstallationID == 0 || c.GithubPrivateKeyPath == "" {
			return errors.New("github.app-id, github.installation-id, and github.private-key must all be set together")
		}
		return nil
	}
	if c.GithubToken == "" {
		return errors.New("GitHub credentials are required: a token (GH_TOKEN) or App credentials")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt64(key string) int64 {
	val, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return 0
	}
	return val
}
