package intake

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/nikogura/portfolio-forge/pkg/llm"
	"github.com/nikogura/portfolio-forge/pkg/profile"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MinPageText is the shortest page text treated as a real profile rather
// than a login wall.
const MinPageText = 200

// StatusAction says how the fetcher treats a response status.
type StatusAction int

const (
	// ActionRetry retries and reports a generic fetch failure when exhausted.
	ActionRetry StatusAction = iota
	// ActionBlocked retries and reports the site as blocking us when exhausted.
	ActionBlocked
	// ActionNotFound fails immediately.
	ActionNotFound
)

// StatusPolicy maps HTTP status codes to actions. Unlisted codes retry.
type StatusPolicy map[int]StatusAction

// DefaultStatusPolicy treats LinkedIn's 999 and 403 as blocking and 404 as final.
func DefaultStatusPolicy() StatusPolicy {
	return StatusPolicy{
		999:                  ActionBlocked,
		http.StatusForbidden: ActionBlocked,
		http.StatusNotFound:  ActionNotFound,
	}
}

//nolint:gochecknoglobals // compiled once
var profileURLPattern = regexp.MustCompile(`linkedin\.com/(in|pub)/[a-zA-Z0-9-]+`)

//nolint:gochecknoglobals // browser-like request headers
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Cache-Control":   "no-cache",
}

// IsValidProfileURL reports whether raw looks like a public profile URL.
func IsValidProfileURL(raw string) bool {
	return profileURLPattern.MatchString(strings.TrimSpace(raw))
}

// NormalizeURL adds a scheme and strips query, fragment and trailing slash.
func NormalizeURL(raw string) (normalized string) {
	normalized = strings.TrimSpace(raw)
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "https://" + normalized
	}

	if i := strings.IndexAny(normalized, "?#"); i >= 0 {
		normalized = normalized[:i]
	}

	normalized = strings.TrimRight(normalized, "/")
	return normalized
}

// Fetcher builds a profile from a public profile page.
type Fetcher struct {
	x        extractor
	settings settings
}

// NewFetcher creates a profile page adapter.
func NewFetcher(gen llm.Generator, opts ...Option) (f *Fetcher) {
	s := applyOptions(opts)
	f = &Fetcher{
		x:        extractor{gen: gen, logger: s.logger},
		settings: s,
	}
	return f
}

// FetchHTML retrieves the page, retrying per the status policy. Invalid URLs
// fail without any network call.
func (f *Fetcher) FetchHTML(ctx context.Context, rawURL string) (html string, err error) {
	if !IsValidProfileURL(rawURL) {
		err = newError(KindInvalidURL, "invalid LinkedIn URL; expected linkedin.com/in/your-name", nil)
		return html, err
	}

	target := NormalizeURL(rawURL)
	logger := f.settings.logger.With().Str("url", target).Logger()

	var lastErr error
	lastAction := ActionRetry
	lastStatus := 0

	for attempt := 1; attempt <= f.settings.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := f.settings.backoff * time.Duration(attempt)
			logger.Warn().Int("attempt", attempt).Dur("delay", delay).Msg("retrying profile fetch")
			sleepErr := f.settings.sleep(ctx, delay)
			if sleepErr != nil {
				err = newError(KindFetchFailed, "profile fetch cancelled", sleepErr)
				return html, err
			}
		}

		var status int
		status, html, lastErr = f.get(ctx, target)
		if lastErr != nil {
			if ctx.Err() != nil {
				err = newError(KindFetchFailed, "profile fetch cancelled", ctx.Err())
				return html, err
			}
			lastAction = ActionRetry
			lastStatus = 0
			logger.Warn().Err(lastErr).Int("attempt", attempt).Msg("profile fetch failed")
			continue
		}

		if status == http.StatusOK {
			return html, err
		}

		html = ""
		lastStatus = status
		lastAction = f.settings.policy[status]
		if lastAction == ActionNotFound {
			err = newError(KindNotFound, "profile not found; check the URL", nil)
			return html, err
		}

		logger.Warn().Int("status", status).Int("attempt", attempt).Msg("profile fetch rejected")
	}

	switch {
	case lastAction == ActionBlocked && lastStatus == http.StatusForbidden:
		err = newError(KindBlocked, "access forbidden; LinkedIn may require login. Paste your profile text instead", nil)
	case lastAction == ActionBlocked:
		err = newError(KindBlocked, fmt.Sprintf("LinkedIn blocked the request (status %d). Paste your profile text instead", lastStatus), nil)
	case lastErr != nil:
		err = newError(KindFetchFailed, "could not reach the profile page", lastErr)
	default:
		err = newError(KindFetchFailed, fmt.Sprintf("profile fetch failed with status %d", lastStatus), nil)
	}

	return html, err
}

func (f *Fetcher) get(ctx context.Context, target string) (status int, body string, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return status, body, err
	}

	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	var resp *http.Response
	resp, err = f.settings.httpClient.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return status, body, err
	}
	defer resp.Body.Close()

	status = resp.StatusCode

	var data []byte
	data, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return status, body, err
	}

	body = string(data)
	return status, body, err
}

// PageText returns the visible text of an HTML page, one phrase per line.
func PageText(html string) (text string, err error) {
	var doc *goquery.Document
	doc, err = goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		err = errors.Wrap(err, "failed to parse HTML")
		return text, err
	}

	doc.Find("script, style, noscript").Remove()

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		for _, phrase := range strings.Split(line, "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				lines = append(lines, phrase)
			}
		}
	}

	text = strings.Join(lines, "\n")
	return text, err
}

// FetchProfile fetches a profile page and extracts a profile from it.
func (f *Fetcher) FetchProfile(ctx context.Context, rawURL string) (result Result, err error) {
	var html string
	html, err = f.FetchHTML(ctx, rawURL)
	if err != nil {
		return result, err
	}

	var text string
	text, err = PageText(html)
	if err != nil {
		err = newError(KindFetchFailed, "could not read the profile page", err)
		return result, err
	}

	if len([]rune(text)) < MinPageText {
		err = newError(KindBlocked, "could not extract profile data; the page may require login. Paste your profile text instead", nil)
		return result, err
	}

	target := NormalizeURL(rawURL)
	result, err = f.x.extract(ctx, extraction{
		system:     llm.ProfilePageExtractionPrompt,
		prefix:     "LinkedIn Profile URL: " + target + "\n\n",
		text:       text,
		budget:     PageTokenBudget,
		provenance: profile.ProvenanceLinkedIn,
		stamp:      stampURL(target),
	})
	return result, err
}

// stampURL sets linkedin_url on the raw document when the model left it empty.
func stampURL(target string) func(raw []byte) []byte {
	return func(raw []byte) []byte {
		if target == "" || gjson.GetBytes(raw, "linkedin_url").String() != "" {
			return raw
		}
		stamped, err := sjson.SetBytes(raw, "linkedin_url", target)
		if err != nil {
			return raw
		}
		return stamped
	}
}
