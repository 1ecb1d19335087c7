package intake

import (
	"context"
	"strings"

	"github.com/nikogura/portfolio-forge/pkg/llm"
	"github.com/nikogura/portfolio-forge/pkg/profile"
)

// MinManualText is the shortest pasted profile text accepted.
const MinManualText = 100

// ManualText builds a profile from text the user copied from their profile
// page, for when fetching is blocked.
type ManualText struct {
	x extractor
}

// NewManualText creates a pasted-text adapter.
func NewManualText(gen llm.Generator, opts ...Option) (m *ManualText) {
	s := applyOptions(opts)
	m = &ManualText{x: extractor{gen: gen, logger: s.logger}}
	return m
}

// Extract parses pasted text. sourceURL is optional.
func (m *ManualText) Extract(ctx context.Context, text, sourceURL string) (result Result, err error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < MinManualText {
		err = newError(KindTooShort, "profile text is too short; paste your full profile (at least 100 characters)", nil)
		return result, err
	}

	job := extraction{
		system:     llm.ProfilePageExtractionPrompt,
		prefix:     "Parse this profile text:\n\n",
		text:       text,
		budget:     PageTokenBudget,
		provenance: profile.ProvenanceLinkedInManual,
	}

	if sourceURL = strings.TrimSpace(sourceURL); sourceURL != "" {
		target := sourceURL
		if IsValidProfileURL(sourceURL) {
			target = NormalizeURL(sourceURL)
		}
		job.prefix = "LinkedIn Profile URL: " + target + "\n\n" + job.prefix
		job.stamp = stampURL(target)
	}

	result, err = m.x.extract(ctx, job)
	return result, err
}
