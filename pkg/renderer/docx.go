package renderer

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// zipEpoch pins archive entry timestamps so output is reproducible.
//
//nolint:gochecknoglobals // constant time value
var zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>
<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>
</Relationships>`

const numberingXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:abstractNum w:abstractNumId="0">
<w:multiLevelType w:val="singleLevel"/>
<w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="bullet"/><w:lvlText w:val="•"/><w:lvlJc w:val="left"/>
<w:pPr><w:ind w:left="360" w:hanging="360"/></w:pPr><w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial"/></w:rPr></w:lvl>
</w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
</w:numbering>`

const stylesTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial" w:cs="Arial"/><w:sz w:val="20"/></w:rPr></w:rPrDefault>
<w:pPrDefault><w:pPr><w:spacing w:after="40"/></w:pPr></w:pPrDefault></w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:pPr><w:jc w:val="center"/></w:pPr><w:rPr><w:b/><w:color w:val="%[1]s"/><w:sz w:val="%[2]d"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:pPr><w:keepNext/><w:spacing w:before="200" w:after="60"/>%[3]s<w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:color w:val="%[1]s"/><w:sz w:val="22"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="ListBullet"><w:name w:val="List Bullet"/><w:basedOn w:val="Normal"/><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr></w:style>
</w:styles>`

const coreTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
<dc:title>%[1]s</dc:title><dc:creator>%[1]s</dc:creator>
<dcterms:created xsi:type="dcterms:W3CDTF">%[2]s</dcterms:created>
<dcterms:modified xsi:type="dcterms:W3CDTF">%[2]s</dcterms:modified>
</cp:coreProperties>`

func escapeXML(s string) string {
	var b strings.Builder
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func hexColor(c [3]int) string {
	return fmt.Sprintf("%02X%02X%02X", c[0], c[1], c[2])
}

// run writes a text run with optional bold/italic and size in half-points.
func run(b *strings.Builder, text string, bold, italic bool, size int) {
	b.WriteString("<w:r>")
	if bold || italic || size > 0 {
		b.WriteString("<w:rPr>")
		if bold {
			b.WriteString("<w:b/>")
		}
		if italic {
			b.WriteString("<w:i/>")
		}
		if size > 0 {
			fmt.Fprintf(b, `<w:sz w:val="%d"/>`, size)
		}
		b.WriteString("</w:rPr>")
	}
	fmt.Fprintf(b, `<w:t xml:space="preserve">%s</w:t></w:r>`, escapeXML(text))
}

func paragraph(b *strings.Builder, props string, text string, bold, italic bool, size int) {
	b.WriteString("<w:p>")
	if props != "" {
		b.WriteString("<w:pPr>" + props + "</w:pPr>")
	}
	if text != "" {
		run(b, text, bold, italic, size)
	}
	b.WriteString("</w:p>")
}

func documentXML(blocks []block) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	for _, blk := range blocks {
		switch blk.kind {
		case blockTitle:
			paragraph(&b, `<w:pStyle w:val="Title"/>`, blk.text, false, false, 0)
		case blockContact:
			paragraph(&b, `<w:jc w:val="center"/>`, blk.text, false, false, 19)
		case blockHeading:
			paragraph(&b, `<w:pStyle w:val="Heading1"/>`, blk.text, false, false, 0)
		case blockEntry:
			paragraph(&b, `<w:spacing w:before="80" w:after="0"/>`, blk.text, true, false, 21)
		case blockMeta:
			paragraph(&b, "", blk.text, false, true, 19)
		case blockBody:
			paragraph(&b, "", blk.text, false, false, 0)
		case blockBullet:
			paragraph(&b, `<w:pStyle w:val="ListBullet"/>`, blk.text, false, false, 0)
		case blockSpacer:
			paragraph(&b, "", "", false, false, 0)
		case blockNote:
			paragraph(&b, `<w:jc w:val="right"/>`, blk.text, false, true, 16)
		}
	}

	b.WriteString(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>`)
	b.WriteString(`<w:pgMar w:top="1080" w:right="1080" w:bottom="1080" w:left="1080" w:header="720" w:footer="720" w:gutter="0"/>`)
	b.WriteString(`</w:sectPr></w:body></w:document>`)
	return b.String()
}

// renderDOCX writes blocks as a minimal Office Open XML package.
func renderDOCX(blocks []block, st style, opts Options) (data []byte, err error) {
	title := ""
	for _, blk := range blocks {
		if blk.kind == blockTitle {
			title = blk.text
			break
		}
	}

	rule := ""
	if st.rule {
		rule = fmt.Sprintf(`<w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="%s"/></w:pBdr>`, hexColor(st.accent))
	}

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"docProps/core.xml", fmt.Sprintf(coreTemplate, escapeXML(title), opts.date().Format(time.RFC3339))},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", fmt.Sprintf(stylesTemplate, hexColor(st.accent), int(st.titleSize*2), rule)},
		{"word/numbering.xml", numberingXML},
		{"word/document.xml", documentXML(blocks)},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, part := range parts {
		header := &zip.FileHeader{Name: part.name, Method: zip.Deflate, Modified: zipEpoch}
		w, createErr := zw.CreateHeader(header)
		if createErr != nil {
			err = errors.Wrapf(createErr, "failed to add %s", part.name)
			return data, err
		}
		_, err = w.Write([]byte(part.body))
		if err != nil {
			err = errors.Wrapf(err, "failed to write %s", part.name)
			return data, err
		}
	}

	err = zw.Close()
	if err != nil {
		err = errors.Wrap(err, "failed to finish DOCX archive")
		return data, err
	}

	data = buf.Bytes()
	return data, err
}
