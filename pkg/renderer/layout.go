package renderer

import (
	"strings"

	"github.com/nikogura/portfolio-forge/pkg/profile"
)

// blockKind is a layout role shared by the PDF and DOCX writers so both
// formats carry the same content in the same order.
type blockKind int

const (
	blockTitle blockKind = iota
	blockContact
	blockHeading
	blockEntry
	blockMeta
	blockBody
	blockBullet
	blockSpacer
	blockNote
)

type block struct {
	kind blockKind
	text string
}

// style is the visual treatment of a document family.
type style struct {
	accent    [3]int
	titleSize float64
	rule      bool
}

// atsStyle is single-color with no decoration, for applicant tracking systems.
//
//nolint:gochecknoglobals // fixed styles
var (
	atsStyle = style{accent: [3]int{0, 0, 0}, titleSize: 18}
	cvStyle  = style{accent: [3]int{10, 37, 64}, titleSize: 20, rule: true}
)

const (
	resumeBulletLimit = 5
	generatedLabel    = "Generated: "
)

type layout struct {
	blocks []block
}

func (l *layout) add(kind blockKind, text string) {
	if kind != blockSpacer && strings.TrimSpace(text) == "" {
		return
	}
	l.blocks = append(l.blocks, block{kind: kind, text: text})
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}

// displayDates renders "2020 - 2024" as "2020 to 2024".
func displayDates(dates string) string {
	return strings.ReplaceAll(dates, " - ", " to ")
}

func (l *layout) header(p profile.Profile, withGitHub bool) {
	l.add(blockTitle, p.Name)
	github := ""
	if withGitHub {
		github = p.GitHub()
	}
	l.add(blockContact, joinNonEmpty(" | ", p.Email, p.Phone, p.Location(), p.LinkedInURL, github))
}

func (l *layout) generated(opts Options) {
	if opts.ShowGenerated {
		l.add(blockSpacer, "")
		l.add(blockNote, generatedLabel+opts.date().Format("2006-01-02"))
	}
}

// resumeLayout is the one-page ATS résumé: experience, skills, projects,
// education. Empty sections are omitted.
func resumeLayout(p profile.Profile, opts Options) []block {
	l := &layout{}
	l.header(p, false)

	if len(p.WorkHistory) > 0 {
		l.add(blockHeading, "WORK EXPERIENCE")
		for _, job := range p.WorkHistory {
			l.add(blockEntry, job.Title)
			l.add(blockMeta, joinNonEmpty(" | ", job.Company, displayDates(job.Dates)))
			bullets := job.Bullets
			if len(bullets) > resumeBulletLimit {
				bullets = bullets[:resumeBulletLimit]
			}
			for _, bullet := range bullets {
				l.add(blockBullet, bullet)
			}
		}
	}

	if len(p.Skills) > 0 {
		l.add(blockHeading, "SKILLS")
		l.add(blockBody, strings.Join(p.Skills, ", "))
	}

	if len(p.Projects) > 0 {
		l.add(blockHeading, "PROJECTS")
		for _, proj := range p.Projects {
			l.add(blockEntry, proj.Name)
			l.add(blockBody, proj.Description)
			if len(proj.Technologies) > 0 {
				l.add(blockMeta, "Technologies: "+strings.Join(proj.Technologies, ", "))
			}
		}
	}

	if len(p.Education) > 0 {
		l.add(blockHeading, "EDUCATION")
		for _, edu := range p.Education {
			l.add(blockEntry, edu.Degree)
			l.add(blockMeta, joinNonEmpty(" | ", edu.Institution, edu.Year))
		}
	}

	l.generated(opts)
	return l.blocks
}

func isCertification(edu profile.EducationEntry) bool {
	return strings.Contains(strings.ToLower(edu.Degree), "certif")
}

// summary is the opening paragraph of the extended CV.
func summary(p profile.Profile) string {
	title := p.CurrentTitle()
	if title == "" {
		title = "professional"
	}
	return "Experienced " + title + " with proven track record in delivering high-quality solutions and driving technical excellence."
}

// cvLayout is the academic-style extended CV with every bullet and a
// separate certifications section.
func cvLayout(p profile.Profile, opts Options) []block {
	l := &layout{}
	l.header(p, true)

	l.add(blockHeading, "PROFESSIONAL SUMMARY")
	l.add(blockBody, summary(p))

	var degrees, certs []profile.EducationEntry
	for _, edu := range p.Education {
		if isCertification(edu) {
			certs = append(certs, edu)
			continue
		}
		degrees = append(degrees, edu)
	}

	if len(degrees) > 0 {
		l.add(blockHeading, "EDUCATION")
		for _, edu := range degrees {
			l.add(blockEntry, edu.Degree)
			l.add(blockMeta, joinNonEmpty(" | ", edu.Institution, edu.Year))
		}
	}

	if len(p.WorkHistory) > 0 {
		l.add(blockHeading, "PROFESSIONAL EXPERIENCE")
		for _, job := range p.WorkHistory {
			l.add(blockEntry, joinNonEmpty(" - ", job.Title, job.Company))
			l.add(blockMeta, displayDates(job.Dates))
			for _, bullet := range job.Bullets {
				l.add(blockBullet, bullet)
			}
		}
	}

	if len(p.Projects) > 0 {
		l.add(blockHeading, "PROJECTS & RESEARCH")
		for _, proj := range p.Projects {
			l.add(blockEntry, proj.Name)
			l.add(blockBody, proj.Description)
			if len(proj.Technologies) > 0 {
				l.add(blockMeta, "Technologies: "+strings.Join(proj.Technologies, ", "))
			}
			l.add(blockMeta, proj.Link)
		}
	}

	if len(p.Skills) > 0 {
		l.add(blockHeading, "TECHNICAL SKILLS")
		l.add(blockBody, strings.Join(p.Skills, " • "))
	}

	if len(certs) > 0 {
		l.add(blockHeading, "CERTIFICATIONS")
		for _, cert := range certs {
			l.add(blockBullet, joinNonEmpty(", ", cert.Degree, cert.Institution, cert.Year))
		}
	}

	l.generated(opts)
	return l.blocks
}

// letterLayout is a cover letter: header then one paragraph per blank-line
// separated chunk.
func letterLayout(p profile.Profile, letter string) []block {
	l := &layout{}
	l.header(p, false)
	l.add(blockSpacer, "")

	for _, para := range splitParagraphs(letter) {
		l.add(blockBody, para)
		l.add(blockSpacer, "")
	}
	return l.blocks
}

func splitParagraphs(text string) (paras []string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, chunk := range strings.Split(text, "\n\n") {
		if chunk = strings.TrimSpace(chunk); chunk != "" {
			paras = append(paras, chunk)
		}
	}
	return paras
}

// plainText renders blocks as text, used for the .txt cover letter.
func plainText(blocks []block) string {
	var b strings.Builder
	for _, blk := range blocks {
		switch blk.kind {
		case blockSpacer:
			b.WriteString("\n")
		case blockBullet:
			b.WriteString("- " + blk.text + "\n")
		default:
			b.WriteString(blk.text + "\n")
		}
	}
	return strings.TrimSpace(b.String()) + "\n"
}
