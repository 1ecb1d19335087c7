package intake

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/nikogura/portfolio-forge/pkg/llm"
	"github.com/nikogura/portfolio-forge/pkg/profile"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// MaxUploadSize is the largest accepted upload.
	MaxUploadSize = 5 * 1024 * 1024
	// MinDocumentText is the shortest cleaned text treated as readable.
	MinDocumentText = 100
)

//nolint:gochecknoglobals // lookup table
var uploadExtensions = map[string]profile.Provenance{
	".pdf":  profile.ProvenancePDF,
	".docx": profile.ProvenanceDOCX,
	".doc":  profile.ProvenanceDOCX,
}

// ValidateUpload checks extension and size before any parsing.
func ValidateUpload(filename string, size int64) (err error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := uploadExtensions[ext]; !ok {
		err = newError(KindUnsupportedFormat, fmt.Sprintf("unsupported file type %q: upload a PDF or DOCX file", ext), nil)
		return err
	}

	if size > MaxUploadSize {
		err = newError(KindFileTooLarge, fmt.Sprintf("file is %.1f MB; the limit is 5 MB", float64(size)/(1024*1024)), nil)
		return err
	}

	return err
}

// DocumentExtractor builds a profile from an uploaded résumé file.
type DocumentExtractor struct {
	x      extractor
	logger zerolog.Logger
}

// NewDocumentExtractor creates a document adapter.
func NewDocumentExtractor(gen llm.Generator, opts ...Option) (d *DocumentExtractor) {
	s := applyOptions(opts)
	d = &DocumentExtractor{
		x:      extractor{gen: gen, logger: s.logger},
		logger: s.logger,
	}
	return d
}

// ExtractText validates the upload and returns its cleaned text.
func (d *DocumentExtractor) ExtractText(data []byte, filename string) (text string, provenance profile.Provenance, err error) {
	err = ValidateUpload(filename, int64(len(data)))
	if err != nil {
		return text, provenance, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	provenance = uploadExtensions[ext]

	var rawText string
	switch ext {
	case ".pdf":
		rawText, err = pdfText(data)
		if err != nil {
			err = newError(KindUnreadable, "could not read the PDF; make sure it is not corrupted or password protected", err)
			return text, provenance, err
		}
	case ".docx", ".doc":
		rawText, err = docxText(data)
		if err != nil {
			msg := "could not read the Word document"
			if ext == ".doc" {
				msg = "could not read the legacy .doc file; save it as .docx or PDF and try again"
			}
			err = newError(KindUnreadable, msg, err)
			return text, provenance, err
		}
	}

	text = CleanText(rawText)
	if len([]rune(text)) < MinDocumentText {
		err = newError(KindUnreadable, "could not extract enough text from the file; it may be a scanned image. Upload a text-based PDF or DOCX", nil)
		return text, provenance, err
	}

	d.logger.Debug().Str("file", filename).Int("chars", len(text)).Msg("extracted document text")
	return text, provenance, err
}

// Extract runs the full upload path: text extraction, AI parsing and validation.
func (d *DocumentExtractor) Extract(ctx context.Context, data []byte, filename string) (result Result, err error) {
	var text string
	var provenance profile.Provenance
	text, provenance, err = d.ExtractText(data, filename)
	if err != nil {
		return result, err
	}

	result, err = d.x.extract(ctx, extraction{
		system:     llm.ResumeExtractionPrompt,
		prefix:     "Parse this résumé:\n\n",
		text:       text,
		budget:     DocumentTokenBudget,
		provenance: provenance,
	})
	return result, err
}

// pdfText extracts plain text page by page. The PDF reader panics on some
// malformed input, so panics are converted to errors.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("malformed PDF: %v", r)
		}
	}()

	var reader *pdf.Reader
	reader, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		err = errors.Wrap(err, "failed to open PDF")
		return text, err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		var pageText string
		pageText, err = page.GetPlainText(nil)
		if err != nil {
			err = errors.Wrapf(err, "failed to read page %d", i)
			return text, err
		}

		if strings.TrimSpace(pageText) != "" {
			pages = append(pages, pageText)
		}
	}

	text = strings.Join(pages, "\n\n")
	return text, err
}

// docxText reads paragraph and table-cell text from word/document.xml in
// document order.
func docxText(data []byte) (text string, err error) {
	var archive *zip.Reader
	archive, err = zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		err = errors.Wrap(err, "not a valid DOCX archive")
		return text, err
	}

	var body io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			body, err = f.Open()
			if err != nil {
				err = errors.Wrap(err, "failed to open document body")
				return text, err
			}
			break
		}
	}

	if body == nil {
		err = errors.New("document body missing from archive")
		return text, err
	}
	defer body.Close()

	decoder := xml.NewDecoder(body)
	var lines []string
	var para strings.Builder
	inText := false

	for {
		tok, tokErr := decoder.Token()
		if tokErr == io.EOF {
			break
		}
		if tokErr != nil {
			err = errors.Wrap(tokErr, "failed to parse document XML")
			return text, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteString("\t")
			case "br":
				para.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if line := strings.TrimSpace(para.String()); line != "" {
					lines = append(lines, line)
				}
				para.Reset()
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}

	text = strings.Join(lines, "\n")
	return text, err
}

//nolint:gochecknoglobals // compiled once
var (
	manyNewlines = regexp.MustCompile(`\n{3,}`)
	manySpaces   = regexp.MustCompile(` {2,}`)
)

// CleanText strips control characters (except newline and tab) and collapses
// runs of blank lines and spaces.
func CleanText(text string) (cleaned string) {
	cleaned = strings.ReplaceAll(text, "\r\n", "\n")
	cleaned = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, cleaned)
	cleaned = manyNewlines.ReplaceAllString(cleaned, "\n\n")
	cleaned = manySpaces.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	return cleaned
}
