package intake

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/nikogura/portfolio-forge/pkg/profile"
)

// roundTripFunc serves requests without a network.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// stubSite answers every request with the given status and body.
type stubSite struct {
	statuses []int
	body     string
	requests []string
}

func (s *stubSite) client() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		s.requests = append(s.requests, req.URL.String())
		status := s.statuses[len(s.statuses)-1]
		if len(s.requests) <= len(s.statuses) {
			status = s.statuses[len(s.requests)-1]
		}
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(s.body)),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	})}
}

type delayRecorder struct {
	delays []time.Duration
}

func (d *delayRecorder) sleep(_ context.Context, delay time.Duration) error {
	d.delays = append(d.delays, delay)
	return nil
}

func profilePage() string {
	about := strings.Repeat("Platform engineer focused on reliability and developer tooling. ", 5)
	return `<html><head><style>body{color:red}</style><script>var tracking = 1;</script></head>
<body><h1>Jane Doe</h1><p>Senior Engineer at Acme</p><section>` + about + `</section></body></html>`
}

func TestIsValidProfileURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"https://www.linkedin.com/in/jane-doe", true},
		{"linkedin.com/in/jane-doe/", true},
		{"https://linkedin.com/pub/jane-doe-123", true},
		{"https://linkedin.com/company/acme", false},
		{"https://example.com/in/jane", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsValidProfileURL(tt.url); got != tt.valid {
				t.Errorf("IsValidProfileURL(%q) = %v, want %v", tt.url, got, tt.valid)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"linkedin.com/in/jane/", "https://linkedin.com/in/jane"},
		{"https://www.linkedin.com/in/jane?trk=abc", "https://www.linkedin.com/in/jane"},
		{"https://www.linkedin.com/in/jane/#about", "https://www.linkedin.com/in/jane"},
		{"http://linkedin.com/in/jane", "http://linkedin.com/in/jane"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeURL(tt.input); got != tt.want {
				t.Errorf("Expected '%s', got '%s'", tt.want, got)
			}
		})
	}
}

func TestFetchInvalidURLMakesNoRequest(t *testing.T) {
	site := &stubSite{statuses: []int{http.StatusOK}, body: profilePage()}
	fetcher := NewFetcher(&fakeGenerator{}, WithHTTPClient(site.client()))

	_, err := fetcher.FetchProfile(context.Background(), "https://example.com/jane")
	if intakeKind(err) != KindInvalidURL {
		t.Fatalf("Expected invalid URL, got %v", err)
	}

	if len(site.requests) != 0 {
		t.Errorf("Expected no requests, got %d", len(site.requests))
	}
}

func TestFetchNotFoundIsFinal(t *testing.T) {
	site := &stubSite{statuses: []int{http.StatusNotFound}}
	recorder := &delayRecorder{}
	fetcher := NewFetcher(&fakeGenerator{}, WithHTTPClient(site.client()), WithSleeper(recorder.sleep))

	_, err := fetcher.FetchHTML(context.Background(), "https://linkedin.com/in/ghost")
	if intakeKind(err) != KindNotFound {
		t.Fatalf("Expected not found, got %v", err)
	}

	if len(site.requests) != 1 {
		t.Errorf("Expected exactly 1 request, got %d", len(site.requests))
	}
}

func TestFetchBlockedAfterRetries(t *testing.T) {
	site := &stubSite{statuses: []int{999}}
	recorder := &delayRecorder{}
	fetcher := NewFetcher(&fakeGenerator{}, WithHTTPClient(site.client()), WithSleeper(recorder.sleep))

	_, err := fetcher.FetchHTML(context.Background(), "https://www.linkedin.com/in/jane?trk=feed")
	if intakeKind(err) != KindBlocked {
		t.Fatalf("Expected blocked, got %v", err)
	}

	if len(site.requests) != 3 {
		t.Errorf("Expected 3 requests, got %d", len(site.requests))
	}

	if site.requests[0] != "https://www.linkedin.com/in/jane" {
		t.Errorf("Expected normalized URL, got '%s'", site.requests[0])
	}

	want := []time.Duration{4 * time.Second, 6 * time.Second}
	if len(recorder.delays) != len(want) {
		t.Fatalf("Expected delays %v, got %v", want, recorder.delays)
	}
	for i := range want {
		if recorder.delays[i] != want[i] {
			t.Errorf("Delay %d: expected %v, got %v", i, want[i], recorder.delays[i])
		}
	}
}

func TestFetchRecoversAfterTransientStatus(t *testing.T) {
	site := &stubSite{statuses: []int{http.StatusServiceUnavailable, http.StatusOK}, body: "<html>ok</html>"}
	recorder := &delayRecorder{}
	fetcher := NewFetcher(&fakeGenerator{}, WithHTTPClient(site.client()), WithSleeper(recorder.sleep))

	html, err := fetcher.FetchHTML(context.Background(), "linkedin.com/in/jane")
	if err != nil {
		t.Fatalf("FetchHTML failed: %v", err)
	}

	if html != "<html>ok</html>" {
		t.Errorf("Unexpected body: %s", html)
	}

	if len(recorder.delays) != 1 {
		t.Errorf("Expected 1 delay, got %v", recorder.delays)
	}
}

func TestFetchCustomStatusPolicy(t *testing.T) {
	site := &stubSite{statuses: []int{http.StatusGone}}
	policy := DefaultStatusPolicy()
	policy[http.StatusGone] = ActionNotFound
	fetcher := NewFetcher(&fakeGenerator{}, WithHTTPClient(site.client()), WithStatusPolicy(policy))

	_, err := fetcher.FetchHTML(context.Background(), "linkedin.com/in/jane")
	if intakeKind(err) != KindNotFound {
		t.Errorf("Expected not found from custom policy, got %v", err)
	}
}

func TestFetchLoginWall(t *testing.T) {
	site := &stubSite{statuses: []int{http.StatusOK}, body: "<html><body>Sign in to view</body></html>"}
	gen := &fakeGenerator{text: extractedProfile}
	fetcher := NewFetcher(gen, WithHTTPClient(site.client()))

	_, err := fetcher.FetchProfile(context.Background(), "linkedin.com/in/jane")
	if intakeKind(err) != KindBlocked {
		t.Fatalf("Expected blocked, got %v", err)
	}

	if gen.calls != 0 {
		t.Errorf("Expected no generation calls, got %d", gen.calls)
	}
}

func TestFetchProfile(t *testing.T) {
	site := &stubSite{statuses: []int{http.StatusOK}, body: profilePage()}
	gen := &fakeGenerator{text: extractedProfile}
	fetcher := NewFetcher(gen, WithHTTPClient(site.client()))

	result, err := fetcher.FetchProfile(context.Background(), "https://www.linkedin.com/in/jane-doe/")
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}

	if result.Profile.LinkedInURL != "https://www.linkedin.com/in/jane-doe" {
		t.Errorf("Expected stamped URL, got '%s'", result.Profile.LinkedInURL)
	}

	if result.Profile.Metadata.Provenance != profile.ProvenanceLinkedIn {
		t.Errorf("Expected linkedin provenance, got '%s'", result.Profile.Metadata.Provenance)
	}

	if !strings.HasPrefix(gen.last.Content, "LinkedIn Profile URL: https://www.linkedin.com/in/jane-doe") {
		t.Errorf("Expected URL prefix in content, got %.80s", gen.last.Content)
	}

	if strings.Contains(gen.last.Content, "tracking") || strings.Contains(gen.last.Content, "color:red") {
		t.Error("Expected script and style content to be removed")
	}
}

func TestPageText(t *testing.T) {
	text, err := PageText(`<div>  Jane   Doe  </div><noscript>enable js</noscript><p>Engineer</p>`)
	if err != nil {
		t.Fatalf("PageText failed: %v", err)
	}

	if strings.Contains(text, "enable js") {
		t.Error("Expected noscript content removed")
	}

	if !strings.Contains(text, "Engineer") {
		t.Errorf("Expected visible text, got %q", text)
	}
}
