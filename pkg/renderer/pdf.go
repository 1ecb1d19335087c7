package renderer

import (
	"bytes"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

const (
	// marginMM is 0.75in.
	marginMM   = 19.05
	lineHeight = 5.0
	fontFamily = "Helvetica"
	pdfCreator = "portfolio-forge"
)

// renderPDF lays blocks out on Letter pages with core fonts only.
func renderPDF(blocks []block, st style, opts Options) (data []byte, err error) {
	doc := fpdf.New("P", "mm", "Letter", "")
	doc.SetMargins(marginMM, marginMM, marginMM)
	doc.SetAutoPageBreak(true, marginMM)

	created := opts.date()
	doc.SetCreationDate(created)
	doc.SetModificationDate(created)
	doc.SetCatalogSort(true)
	doc.SetCreator(pdfCreator, false)

	tr := doc.UnicodeTranslatorFromDescriptor("")
	for _, blk := range blocks {
		if blk.kind == blockTitle {
			doc.SetTitle(blk.text, true)
			doc.SetAuthor(blk.text, true)
			break
		}
	}

	doc.AddPage()

	pageWidth, _ := doc.GetPageSize()
	left, _, right, _ := doc.GetMargins()
	width := pageWidth - left - right

	for _, blk := range blocks {
		text := tr(blk.text)

		switch blk.kind {
		case blockTitle:
			doc.SetFont(fontFamily, "B", st.titleSize)
			doc.SetTextColor(st.accent[0], st.accent[1], st.accent[2])
			doc.CellFormat(0, st.titleSize*0.45, text, "", 1, "C", false, 0, "")
		case blockContact:
			doc.SetFont(fontFamily, "", 9.5)
			doc.SetTextColor(0, 0, 0)
			doc.MultiCell(0, lineHeight, text, "", "C", false)
			doc.Ln(2)
		case blockHeading:
			doc.Ln(3)
			doc.SetFont(fontFamily, "B", 11)
			doc.SetTextColor(st.accent[0], st.accent[1], st.accent[2])
			doc.CellFormat(0, 6, text, "", 1, "L", false, 0, "")
			if st.rule {
				y := doc.GetY()
				doc.SetDrawColor(st.accent[0], st.accent[1], st.accent[2])
				doc.Line(left, y, left+width, y)
			}
			doc.SetTextColor(0, 0, 0)
			doc.Ln(1.5)
		case blockEntry:
			doc.SetFont(fontFamily, "B", 10.5)
			doc.MultiCell(0, lineHeight, text, "", "L", false)
		case blockMeta:
			doc.SetFont(fontFamily, "I", 9.5)
			doc.MultiCell(0, lineHeight, text, "", "L", false)
		case blockBody:
			doc.SetFont(fontFamily, "", 10)
			doc.MultiCell(0, lineHeight, text, "", "L", false)
		case blockBullet:
			doc.SetFont(fontFamily, "", 10)
			doc.SetX(left + 3)
			doc.CellFormat(4, lineHeight, tr("•"), "", 0, "L", false, 0, "")
			doc.MultiCell(width-7, lineHeight, text, "", "L", false)
		case blockSpacer:
			doc.Ln(4)
		case blockNote:
			doc.SetFont(fontFamily, "I", 8)
			doc.SetTextColor(0, 0, 0)
			doc.CellFormat(0, 4, text, "", 1, "R", false, 0, "")
		}
	}

	var buf bytes.Buffer
	err = doc.Output(&buf)
	if err != nil {
		err = errors.Wrap(err, "failed to write PDF")
		return data, err
	}

	data = buf.Bytes()
	return data, err
}
