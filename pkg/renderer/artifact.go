// Package renderer assembles the output documents for a profile: a portfolio
// web page, an ATS-friendly résumé as PDF and DOCX, an extended CV and cover
// letters.
package renderer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nikogura/portfolio-forge/pkg/profile"
)

// Kind identifies an artifact format.
type Kind string

const (
	KindMarkup        Kind = "markup"
	KindPaginated     Kind = "paginated"
	KindWordProcessor Kind = "wordprocessor"
	KindText          Kind = "text"
)

const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Artifact is one rendered output file.
type Artifact struct {
	Kind        Kind
	Filename    string
	ContentType string
	Data        []byte
}

// RenderError reports a failure producing one format.
type RenderError struct {
	Format Kind
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s rendering failed: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Options control deterministic rendering.
type Options struct {
	// Now supplies the document date. Defaults to time.Now.
	Now func() time.Time
	// ShowGenerated adds a labelled "Generated:" line to paginated output.
	ShowGenerated bool
}

// date is the rendering date truncated to the day, so documents rendered
// from the same profile on the same day are byte-identical.
func (o Options) date() time.Time {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	t := now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

//nolint:gochecknoglobals // compiled once
var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// fileBase turns a display name into a filename prefix.
func fileBase(name string) string {
	base := unsafeFilename.ReplaceAllString(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"), "")
	if base == "" {
		base = "Candidate"
	}
	return base
}

// ContentHash is a stable digest of the profile's content, ignoring metadata.
func ContentHash(p profile.Profile) string {
	p.Metadata = profile.Metadata{}
	// Profile holds only strings and slices, so marshalling cannot fail.
	data, _ := json.Marshal(p)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
