package renderer

import (
	"strings"

	"github.com/nikogura/portfolio-forge/pkg/profile"
	"github.com/pkg/errors"
)

func pdfArtifact(blocks []block, st style, opts Options, filename string) (artifact Artifact, err error) {
	var data []byte
	data, err = renderPDF(blocks, st, opts)
	if err != nil {
		err = &RenderError{Format: KindPaginated, Err: err}
		return artifact, err
	}

	artifact = Artifact{Kind: KindPaginated, Filename: filename, ContentType: ContentTypePDF, Data: data}
	return artifact, err
}

func docxArtifact(blocks []block, st style, opts Options, filename string) (artifact Artifact, err error) {
	var data []byte
	data, err = renderDOCX(blocks, st, opts)
	if err != nil {
		err = &RenderError{Format: KindWordProcessor, Err: err}
		return artifact, err
	}

	artifact = Artifact{Kind: KindWordProcessor, Filename: filename, ContentType: ContentTypeDOCX, Data: data}
	return artifact, err
}

// RenderResumePDF renders the ATS résumé as a Letter-size PDF.
func RenderResumePDF(p profile.Profile, opts Options) (artifact Artifact, err error) {
	artifact, err = pdfArtifact(resumeLayout(p, opts), atsStyle, opts, fileBase(p.Name)+"_Resume.pdf")
	return artifact, err
}

// RenderResumeDOCX renders the ATS résumé as a Word document.
func RenderResumeDOCX(p profile.Profile, opts Options) (artifact Artifact, err error) {
	artifact, err = docxArtifact(resumeLayout(p, opts), atsStyle, opts, fileBase(p.Name)+"_Resume.docx")
	return artifact, err
}

// RenderCVPDF renders the extended CV as a PDF.
func RenderCVPDF(p profile.Profile, opts Options) (artifact Artifact, err error) {
	artifact, err = pdfArtifact(cvLayout(p, opts), cvStyle, opts, fileBase(p.Name)+"_CV.pdf")
	return artifact, err
}

// RenderCVDOCX renders the extended CV as a Word document.
func RenderCVDOCX(p profile.Profile, opts Options) (artifact Artifact, err error) {
	artifact, err = docxArtifact(cvLayout(p, opts), cvStyle, opts, fileBase(p.Name)+"_CV.docx")
	return artifact, err
}

func checkLetter(letter string) (err error) {
	if strings.TrimSpace(letter) == "" {
		err = errors.New("cover letter is empty")
	}
	return err
}

// RenderLetterPDF renders a cover letter as a PDF.
func RenderLetterPDF(p profile.Profile, letter string, opts Options) (artifact Artifact, err error) {
	err = checkLetter(letter)
	if err != nil {
		err = &RenderError{Format: KindPaginated, Err: err}
		return artifact, err
	}

	artifact, err = pdfArtifact(letterLayout(p, letter), atsStyle, opts, fileBase(p.Name)+"_Cover_Letter.pdf")
	return artifact, err
}

// RenderLetterDOCX renders a cover letter as a Word document.
func RenderLetterDOCX(p profile.Profile, letter string, opts Options) (artifact Artifact, err error) {
	err = checkLetter(letter)
	if err != nil {
		err = &RenderError{Format: KindWordProcessor, Err: err}
		return artifact, err
	}

	artifact, err = docxArtifact(letterLayout(p, letter), atsStyle, opts, fileBase(p.Name)+"_Cover_Letter.docx")
	return artifact, err
}

// LetterText renders a cover letter as plain text.
func LetterText(p profile.Profile, letter string) (artifact Artifact) {
	artifact = Artifact{
		Kind:        KindText,
		Filename:    fileBase(p.Name) + "_Cover_Letter.txt",
		ContentType: ContentTypeText,
		Data:        []byte(plainText(letterLayout(p, letter))),
	}
	return artifact
}
