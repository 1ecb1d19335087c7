package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/portfolio-forge/pkg/config"
	"github.com/nikogura/portfolio-forge/pkg/intake"
	"github.com/nikogura/portfolio-forge/pkg/llm"
	"github.com/nikogura/portfolio-forge/pkg/logging"
	"github.com/nikogura/portfolio-forge/pkg/orchestrator"
	"github.com/nikogura/portfolio-forge/pkg/profile"
	"github.com/nikogura/portfolio-forge/pkg/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// app is the wiring shared by every command.
type app struct {
	cfg    config.Config
	logger zerolog.Logger
	gen    llm.Generator
}

// loadApp reads configuration and builds the logger and generation client.
func loadApp() (a app, err error) {
	a.cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return a, err
	}

	logCfg := a.cfg.Logging
	if level := verboseLevel(); level != "" {
		logCfg.Level = level
	}

	a.logger, err = logging.New(logCfg)
	if err != nil {
		return a, err
	}

	a.gen = newGenerator(a.cfg, a.logger)
	return a, err
}

// verboseLevel is "debug" under --verbose and empty otherwise.
func verboseLevel() string {
	if getVerbose() {
		return "debug"
	}
	return ""
}

// newGenerator picks the configured provider and wraps it in the retrying client.
func newGenerator(cfg config.Config, logger zerolog.Logger) (gen llm.Generator) {
	var provider llm.Provider
	switch cfg.Provider {
	case config.ProviderAnthropic:
		provider = llm.NewAnthropicProvider(cfg.AnthropicAPIKey)
	default:
		provider = llm.NewGroqProvider(cfg.GroqAPIKey)
	}

	gen = llm.NewClient(provider, llm.WithLogger(logger))
	return gen
}

func (a app) orchestrator(opts ...orchestrator.Option) *orchestrator.Orchestrator {
	opts = append([]orchestrator.Option{orchestrator.WithLogger(a.logger)}, opts...)
	return orchestrator.New(a.gen, opts...)
}

// getOutputDir returns the flag value or the configured default.
func getOutputDir(flagValue, configValue string) (outDir string) {
	outDir = flagValue
	if outDir == "" {
		outDir = configValue
	}
	return outDir
}

// loadProfile reads a saved profile and reports validation problems.
func loadProfile(path string) (p profile.Profile, err error) {
	var result profile.Result
	result, err = profile.Load(path)
	if err != nil {
		return p, err
	}

	printWarnings(result)
	p = result.Profile
	return p, err
}

func printWarnings(result profile.Result) {
	if result.Valid() {
		return
	}
	fmt.Println("Warning: the profile has problems (continuing anyway):")
	for _, v := range result.Err.Violations {
		fmt.Printf("  - %s: %s\n", v.Field, v.Message)
	}
}

// saveSession writes the session's profile and prints a short summary.
func saveSession(s *orchestrator.Session, out string) (err error) {
	printWarnings(s.Validation)

	err = profile.Save(out, s.Profile)
	if err != nil {
		return err
	}

	fmt.Printf("Profile for %s (%s, confidence %.0f%%) saved at: %s\n",
		displayName(s.Profile), s.Profile.Metadata.Provenance, s.Confidence*100, out)

	if getVerbose() {
		fmt.Println()
		fmt.Println(profile.Format(s.Profile))
	}
	return err
}

func displayName(p profile.Profile) string {
	if p.Name == "" {
		return "unknown candidate"
	}
	return p.Name
}

// explain wraps err with the hint a user can act on.
func explain(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(orchestrator.Hint(err))
}

// readJobDescription accepts a file path, an http(s) URL or "-" for stdin.
func readJobDescription(ctx context.Context, input string) (text string, err error) {
	switch {
	case input == "-":
		var data []byte
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			err = errors.Wrap(err, "failed to read job description from stdin")
			return text, err
		}
		text = string(data)
	case strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://"):
		text, err = fetchJobDescription(ctx, input)
		if err != nil {
			return text, err
		}
	default:
		var data []byte
		data, err = os.ReadFile(input)
		if err != nil {
			err = errors.Wrapf(err, "failed to read job description: %s", input)
			return text, err
		}
		text = string(data)
	}

	text = intake.CleanText(text)
	if getVerbose() {
		fmt.Printf("Job description: %d characters\n", len(text))
	}
	return text, err
}

func fetchJobDescription(ctx context.Context, url string) (text string, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return text, err
	}

	client := &http.Client{Timeout: 30 * time.Second}

	var resp *http.Response
	resp, err = client.Do(req)
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch job description: %s", url)
		return text, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("failed to fetch job description: %s returned %d", url, resp.StatusCode)
		return text, err
	}

	var body []byte
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read job description")
		return text, err
	}

	text, err = intake.PageText(string(body))
	return text, err
}

// sessionFile holds the signed-in token between commands.
func sessionFile() (path string, err error) {
	path, err = config.DefaultPath()
	if err != nil {
		return path, err
	}
	path = filepath.Join(filepath.Dir(path), "session")
	return path, err
}

func saveToken(token string) (err error) {
	var path string
	path, err = sessionFile()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), 0750)
	if err != nil {
		err = errors.Wrap(err, "failed to create session directory")
		return err
	}

	err = os.WriteFile(path, []byte(token), 0600)
	if err != nil {
		err = errors.Wrap(err, "failed to save session")
	}
	return err
}

func loadToken() (token string, err error) {
	var path string
	path, err = sessionFile()
	if err != nil {
		return token, err
	}

	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.New("not signed in (run 'portfolio-forge account signin')")
			return token, err
		}
		err = errors.Wrap(err, "failed to read session")
		return token, err
	}

	token = strings.TrimSpace(string(data))
	return token, err
}

// backend holds the optional persistence services.
type backend struct {
	db       *store.Pool
	denylist *store.RedisDenylist
	auth     *store.Auth
	blobs    *store.Blobs
}

func (b backend) Close() {
	if b.denylist != nil {
		_ = b.denylist.Close()
	}
	if b.db != nil {
		b.db.Close()
	}
}

// openBackend connects to Postgres, Redis and (when configured) object storage.
func openBackend(ctx context.Context, a app) (b backend, err error) {
	if a.cfg.Database.URL == "" {
		err = errors.New("database.url is required (set in config or DATABASE_URL env var)")
		return b, err
	}

	if a.cfg.Auth.JWTSecret == "" {
		err = errors.New("auth.jwt_secret is required (set in config or JWT_SECRET env var)")
		return b, err
	}

	b.db, err = store.Connect(ctx, a.cfg.Database.URL)
	if err != nil {
		return b, err
	}

	err = store.Migrate(ctx, b.db)
	if err != nil {
		b.Close()
		return b, err
	}

	var tokens *store.Tokens
	tokens, err = store.NewTokens(a.cfg.Auth.JWTSecret, a.cfg.TokenTTL())
	if err != nil {
		b.Close()
		return b, err
	}

	b.denylist = store.NewRedisDenylist(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB, a.logger)
	b.auth = store.NewAuth(store.NewUsers(b.db), tokens, b.denylist, a.logger)

	if a.cfg.StorageEnabled() {
		b.blobs, err = store.NewBlobs(a.cfg.Storage, a.logger)
		if err != nil {
			b.Close()
			return b, err
		}
	}

	return b, err
}

// currentUser verifies the saved token.
func (b backend) currentUser(ctx context.Context) (userID uuid.UUID, claims store.Claims, err error) {
	var token string
	token, err = loadToken()
	if err != nil {
		return userID, claims, err
	}

	claims, err = b.auth.Verify(ctx, token)
	if err != nil {
		err = errors.Wrap(err, "session expired or revoked, sign in again")
		return userID, claims, err
	}

	userID, err = uuid.Parse(claims.UserID)
	if err != nil {
		err = errors.Wrap(err, "malformed session token")
	}
	return userID, claims, err
}
