package orchestrator

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nikogura/portfolio-forge/pkg/intake"
	"github.com/nikogura/portfolio-forge/pkg/llm"
	"github.com/nikogura/portfolio-forge/pkg/renderer"
	"github.com/nikogura/portfolio-forge/pkg/store"
	"github.com/pkg/errors"
)

//nolint:gochecknoglobals // lookup table
var intakeHints = map[intake.Kind]string{
	intake.KindUnsupportedFormat: "Upload a PDF, DOCX or DOC file.",
	intake.KindFileTooLarge:      "Upload a file smaller than 5 MB.",
	intake.KindUnreadable:        "Upload a text-based PDF or DOCX rather than a scanned image.",
	intake.KindInvalidURL:        "Use a profile URL like https://www.linkedin.com/in/your-name.",
	intake.KindBlocked:           "The site blocked automated access. Copy your profile text and paste it manually instead.",
	intake.KindNotFound:          "Check that the profile URL is correct and the profile is public.",
	intake.KindFetchFailed:       "The profile page could not be fetched. Try again later or paste the text manually.",
	intake.KindTooShort:          "Paste more of your profile: at least 100 characters are needed.",
	intake.KindExtractionFailed:  "Try a different source or fill in the questionnaire.",
}

// Hint turns an error from any step into an actionable message.
func Hint(err error) string {
	if err == nil {
		return ""
	}

	var genErr *llm.GenerationError
	if errors.As(err, &genErr) {
		return genErr.UserMessage()
	}

	var intakeErr *intake.IntakeError
	if errors.As(err, &intakeErr) {
		msg := sentence(intakeErr.UserMessage())
		if hint, ok := intakeHints[intakeErr.Kind]; ok {
			msg += " " + hint
		}
		return msg
	}

	var renderErr *renderer.RenderError
	if errors.As(err, &renderErr) {
		return fmt.Sprintf("The %s file could not be produced. The other formats are still available.", renderErr.Format)
	}

	if errors.Is(err, store.ErrNotFound) {
		return "No saved portfolio was found."
	}

	return fmt.Sprintf("Something went wrong: %v", err)
}

// sentence capitalizes msg and ends it with a period.
func sentence(msg string) string {
	msg = strings.TrimSpace(msg)
	r, size := utf8.DecodeRuneInString(msg)
	if size == 0 {
		return msg
	}

	msg = string(unicode.ToUpper(r)) + msg[size:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}
