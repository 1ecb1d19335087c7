package intake

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/nikogura/portfolio-forge/pkg/llm"
	"github.com/nikogura/portfolio-forge/pkg/profile"
	"github.com/nikogura/portfolio-forge/pkg/renderer"
	"github.com/pkg/errors"
)

// fakeGenerator returns canned text and counts calls.
type fakeGenerator struct {
	text  string
	err   error
	calls int
	last  llm.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req llm.Request) (resp llm.Response, err error) {
	g.calls++
	g.last = req
	if g.err != nil {
		err = g.err
		return resp, err
	}
	resp.Text = g.text
	return resp, err
}

const extractedProfile = `{
	"name": "Jane Doe",
	"email": "jane.doe@example.com",
	"work_history": [{"title": "Engineer", "company": "Acme", "dates": "2020 - 2024", "bullets": ["Built things"]}],
	"skills": ["Go", "SQL"],
	"education": [],
	"parsing_confidence": 0.99
}`

// buildDOCX creates a minimal DOCX whose body holds the given paragraphs.
func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Cell text</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`)
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Failed to create zip entry: %v", err)
	}
	_, _ = w.Write([]byte(body.String()))
	err = zw.Close()
	if err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}

	return buf.Bytes()
}

func intakeKind(err error) Kind {
	var intakeErr *IntakeError
	if errors.As(err, &intakeErr) {
		return intakeErr.Kind
	}
	return ""
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		want     Kind
	}{
		{"pdf ok", "resume.pdf", 1024, ""},
		{"docx upper case", "RESUME.DOCX", 1024, ""},
		{"doc ok", "resume.doc", 1024, ""},
		{"exactly limit", "resume.pdf", MaxUploadSize, ""},
		{"too large", "resume.pdf", 6 * 1024 * 1024, KindFileTooLarge},
		{"text file", "resume.txt", 10, KindUnsupportedFormat},
		{"no extension", "resume", 10, KindUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.size)
			if got := intakeKind(err); got != tt.want {
				t.Errorf("Expected kind '%s', got '%s' (%v)", tt.want, got, err)
			}
		})
	}
}

func TestExtractRejectsLargeFileBeforeParsing(t *testing.T) {
	gen := &fakeGenerator{text: extractedProfile}
	extractor := NewDocumentExtractor(gen)

	data := make([]byte, 6*1024*1024)
	_, err := extractor.Extract(context.Background(), data, "big.pdf")

	if intakeKind(err) != KindFileTooLarge {
		t.Fatalf("Expected file too large, got %v", err)
	}

	if gen.calls != 0 {
		t.Errorf("Expected no generation calls, got %d", gen.calls)
	}
}

func TestExtractShortDocumentIsUnreadable(t *testing.T) {
	gen := &fakeGenerator{text: extractedProfile}
	extractor := NewDocumentExtractor(gen)

	// 50 characters of text.
	data := buildDOCX(t, strings.Repeat("x", 40))

	_, err := extractor.Extract(context.Background(), data, "short.docx")
	if intakeKind(err) != KindUnreadable {
		t.Fatalf("Expected unreadable document, got %v", err)
	}

	if gen.calls != 0 {
		t.Errorf("Expected no generation calls, got %d", gen.calls)
	}
}

func TestExtractDOCX(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n" + extractedProfile + "\n```"}
	extractor := NewDocumentExtractor(gen)

	data := buildDOCX(t,
		"Jane Doe",
		"jane.doe@example.com",
		"Engineer at Acme, 2020 - 2024, built distributed systems in Go and SQL for the payments team.",
	)

	result, err := extractor.Extract(context.Background(), data, "jane.docx")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Profile.Name != "Jane Doe" {
		t.Errorf("Expected name 'Jane Doe', got '%s'", result.Profile.Name)
	}

	if result.Profile.Metadata.Provenance != profile.ProvenanceDOCX {
		t.Errorf("Expected docx provenance, got '%s'", result.Profile.Metadata.Provenance)
	}

	// Upstream confidence is ignored: name 0.25 + work 0.30 + skills 0.15.
	if result.Confidence < 0.699 || result.Confidence > 0.701 {
		t.Errorf("Expected recomputed confidence 0.70, got %.2f", result.Confidence)
	}

	if !strings.Contains(gen.last.Content, "Cell text") {
		t.Error("Expected table cell text in extraction input")
	}

	if gen.last.Model != llm.ModelFast || !gen.last.ForceJSON {
		t.Errorf("Unexpected request settings: %+v", gen.last)
	}
}

func TestExtractWarnsOnInvalidProfile(t *testing.T) {
	gen := &fakeGenerator{text: `{"name": "Jane Doe", "email": "nope"}`}
	extractor := NewDocumentExtractor(gen)

	data := buildDOCX(t, strings.Repeat("Experienced engineer with many skills. ", 5))

	result, err := extractor.Extract(context.Background(), data, "jane.docx")
	if err != nil {
		t.Fatalf("Expected validation to be warn-only, got %v", err)
	}

	if result.Validation.Valid() {
		t.Error("Expected validation diagnostics for a bad email")
	}

	if result.Profile.Name != "Jane Doe" {
		t.Errorf("Expected best-available name, got '%s'", result.Profile.Name)
	}
}

func TestExtractGenerationFailure(t *testing.T) {
	genErr := &llm.GenerationError{Kind: llm.KindRateLimited, Attempts: 3, Err: errors.New("429")}
	gen := &fakeGenerator{err: genErr}
	extractor := NewDocumentExtractor(gen)

	data := buildDOCX(t, strings.Repeat("Experienced engineer with many skills. ", 5))

	_, err := extractor.Extract(context.Background(), data, "jane.docx")
	if intakeKind(err) != KindExtractionFailed {
		t.Fatalf("Expected extraction failure, got %v", err)
	}

	var wrapped *llm.GenerationError
	if !errors.As(err, &wrapped) || wrapped.Kind != llm.KindRateLimited {
		t.Error("Expected generation error to remain reachable")
	}
}

// squash drops whitespace so PDF text layout differences do not matter.
func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestExtractTextFromRenderedPDF(t *testing.T) {
	p := profile.Profile{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		WorkHistory: []profile.WorkEntry{{
			Title:   "Senior Engineer",
			Company: "Acme Corp",
			Dates:   "2020 - Present",
			Bullets: []string{"Built the billing platform", "Reduced deploy time by half"},
		}},
		Skills: []string{"Go", "PostgreSQL", "Kubernetes"},
		Education: []profile.EducationEntry{{
			Degree:      "BSc Computer Science",
			Institution: "State University",
			Year:        "2015",
		}},
	}

	artifact, err := renderer.RenderResumePDF(p, renderer.Options{})
	if err != nil {
		t.Fatalf("Failed to render PDF: %v", err)
	}

	extractor := NewDocumentExtractor(&fakeGenerator{})

	text, provenance, err := extractor.ExtractText(artifact.Data, "resume.pdf")
	if err != nil {
		t.Fatalf("Failed to extract PDF text: %v", err)
	}

	if provenance != profile.ProvenancePDF {
		t.Errorf("Expected provenance '%s', got '%s'", profile.ProvenancePDF, provenance)
	}

	got := squash(text)
	for _, want := range []string{"Jane Doe", "WORK EXPERIENCE", "SKILLS", "EDUCATION", "Built the billing platform", "Reduced deploy time by half"} {
		if !strings.Contains(got, squash(want)) {
			t.Errorf("Expected extracted text to contain '%s', got '%s'", want, text)
		}
	}
}

func TestExtractMalformedPDF(t *testing.T) {
	extractor := NewDocumentExtractor(&fakeGenerator{})

	_, err := extractor.Extract(context.Background(), []byte("%PDF-1.4 garbage"), "broken.pdf")
	if intakeKind(err) != KindUnreadable {
		t.Errorf("Expected unreadable document, got %v", err)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"newlines", "a\n\n\n\nb", "a\n\nb"},
		{"spaces", "a    b", "a b"},
		{"control chars", "a\x00b\x07c\td", "abc\td"},
		{"crlf", "a\r\nb", "a\nb"},
		{"accents kept", "  Zoë Müller  ", "Zoë Müller"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestManualTextTooShort(t *testing.T) {
	gen := &fakeGenerator{text: extractedProfile}
	adapter := NewManualText(gen)

	_, err := adapter.Extract(context.Background(), "   short   ", "")
	if intakeKind(err) != KindTooShort {
		t.Fatalf("Expected too short, got %v", err)
	}

	if gen.calls != 0 {
		t.Errorf("Expected no generation calls, got %d", gen.calls)
	}
}

func TestManualTextEmailRoundTrip(t *testing.T) {
	const email = "jane.o'neil+jobs@mail.example.co.uk"
	pasted := "Jane O'Neil\nSenior Engineer at Acme\nContact: " + email + "\n" + strings.Repeat("Built reliable systems. ", 5)

	// The model copies the email substring out of the pasted text.
	gen := &fakeGenerator{text: `{"name": "Jane O'Neil", "email": "` + email + `"}`}
	adapter := NewManualText(gen)

	result, err := adapter.Extract(context.Background(), pasted, "linkedin.com/in/jane-oneil/?trk=x")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Profile.Email != email {
		t.Errorf("Expected email '%s', got '%s'", email, result.Profile.Email)
	}

	if result.Profile.LinkedInURL != "https://linkedin.com/in/jane-oneil" {
		t.Errorf("Expected stamped URL, got '%s'", result.Profile.LinkedInURL)
	}

	if result.Profile.Metadata.Provenance != profile.ProvenanceLinkedInManual {
		t.Errorf("Expected linkedin_manual provenance, got '%s'", result.Profile.Metadata.Provenance)
	}
}

func TestQuestionnaire(t *testing.T) {
	answers := Answers{
		Name:     "Sam Lee",
		Email:    "sam@example.com",
		Location: "Denver, CO",
		Jobs: []JobAnswer{
			{
				Title:            "Backend Engineer",
				Company:          "Initech",
				Start:            "2021",
				Responsibilities: "- Built the billing API\n\n• Cut latency by 40%\n  * Mentored two engineers  ",
			},
		},
		Projects: []ProjectAnswer{{Name: "tally", Technologies: "Go, Postgres , ", Link: "github.com/sam/tally"}},
		Skills:   "Go, Postgres, go",
	}

	result := Questionnaire(answers)

	if !result.Validation.Valid() {
		t.Fatalf("Expected valid profile, got %v", result.Validation.Err)
	}

	p := result.Profile
	job := p.WorkHistory[0]
	if job.Dates != "2021 - Present" {
		t.Errorf("Expected '2021 - Present', got '%s'", job.Dates)
	}

	want := []string{"Built the billing API", "Cut latency by 40%", "Mentored two engineers"}
	if len(job.Bullets) != len(want) {
		t.Fatalf("Expected %d bullets, got %v", len(want), job.Bullets)
	}
	for i := range want {
		if job.Bullets[i] != want[i] {
			t.Errorf("Bullet %d: expected '%s', got '%s'", i, want[i], job.Bullets[i])
		}
	}

	if len(p.Skills) != 2 {
		t.Errorf("Expected deduplicated skills, got %v", p.Skills)
	}

	if len(p.Projects[0].Technologies) != 2 || p.Projects[0].Link != "https://github.com/sam/tally" {
		t.Errorf("Unexpected project: %+v", p.Projects[0])
	}

	if p.Location() != "Denver, CO" {
		t.Errorf("Expected location, got '%s'", p.Location())
	}

	if p.Metadata.Provenance != profile.ProvenanceQuestionnaire {
		t.Errorf("Expected questionnaire provenance, got '%s'", p.Metadata.Provenance)
	}
}
