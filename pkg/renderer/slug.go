package renderer

import (
	"crypto/md5" //nolint:gosec // short non-cryptographic uniqueness suffix
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxSlugLength caps the subdomain slug.
	MaxSlugLength = 30
	slugSuffixLen = 4
	fallbackSlug  = "portfolio"
)

//nolint:gochecknoglobals // compiled once
var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces     = regexp.MustCompile(`\s+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

// foldAccents strips diacritics, e.g. "José" -> "Jose".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Slug builds a URL-safe subdomain from a name. The short hash of name and
// seed keeps slugs for the same name distinct across users.
func Slug(name, seed string) (slug string) {
	clean := strings.ToLower(foldAccents(name))
	clean = slugDisallowed.ReplaceAllString(clean, "")
	clean = slugSpaces.ReplaceAllString(strings.TrimSpace(clean), "-")
	clean = strings.Trim(slugHyphens.ReplaceAllString(clean, "-"), "-")

	sum := md5.Sum([]byte(name + "-" + seed)) //nolint:gosec // see import
	suffix := hex.EncodeToString(sum[:])[:slugSuffixLen]

	if limit := MaxSlugLength - slugSuffixLen - 1; len(clean) > limit {
		clean = strings.TrimRight(clean[:limit], "-")
	}

	if clean == "" {
		clean = fallbackSlug
	}

	slug = clean + "-" + suffix
	return slug
}
