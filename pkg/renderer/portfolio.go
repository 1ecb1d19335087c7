package renderer

import (
	"bytes"
	"context"
	"strings"

	"github.com/nikogura/portfolio-forge/pkg/llm"
	"github.com/nikogura/portfolio-forge/pkg/profile"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// MarkupSource produces portfolio HTML for a profile.
type MarkupSource interface {
	Markup(ctx context.Context, p profile.Profile) (html string, err error)
}

// RemoteMarkup asks the generation service for a custom portfolio page.
type RemoteMarkup struct {
	gen    llm.Generator
	logger zerolog.Logger
}

// NewRemoteMarkup creates a generated-markup source.
func NewRemoteMarkup(gen llm.Generator, logger zerolog.Logger) (remote *RemoteMarkup) {
	remote = &RemoteMarkup{gen: gen, logger: logger}
	return remote
}

// Markup generates, unwraps and checks portfolio HTML.
func (r *RemoteMarkup) Markup(ctx context.Context, p profile.Profile) (html string, err error) {
	var resp llm.Response
	resp, err = r.gen.Generate(ctx, llm.Request{
		System:      llm.PortfolioPrompt,
		Content:     "Generate a portfolio website for:\n\n" + profile.Format(p),
		Model:       llm.ModelFast,
		Temperature: 0.7,
		MaxTokens:   4096,
	})
	if err != nil {
		err = errors.Wrap(err, "portfolio generation failed")
		return html, err
	}

	html = llm.StripCodeFence(resp.Text, "html")
	if html == "" {
		err = errors.New("portfolio generation returned no markup")
		return html, err
	}

	if problems := ValidateMarkup(html); len(problems) > 0 {
		r.logger.Warn().Strs("problems", problems).Msg("generated markup incomplete, repairing")
		html = RepairMarkup(html)
	}

	return html, err
}

// ValidateMarkup lists the structural elements missing from html.
func ValidateMarkup(html string) (problems []string) {
	lower := strings.ToLower(html)
	checks := []struct {
		needle  string
		problem string
	}{
		{"<!doctype html", "missing DOCTYPE declaration"},
		{"<html", "missing <html> element"},
		{"<head", "missing <head> element"},
		{"<body", "missing <body> element"},
	}

	for _, check := range checks {
		if !strings.Contains(lower, check.needle) {
			problems = append(problems, check.problem)
		}
	}
	return problems
}

// RepairMarkup prepends a DOCTYPE, wrapping fragments in a minimal document.
func RepairMarkup(html string) (repaired string) {
	lower := strings.ToLower(html)
	repaired = strings.TrimSpace(html)

	if !strings.Contains(lower, "<html") {
		repaired = "<html lang=\"en\">\n<head><meta charset=\"UTF-8\"><title>Portfolio</title></head>\n<body>\n" +
			repaired + "\n</body>\n</html>"
	}

	if !strings.Contains(lower, "<!doctype html") {
		repaired = "<!DOCTYPE html>\n" + repaired
	}

	return repaired
}

// LocalMarkup renders the built-in portfolio template.
type LocalMarkup struct{}

// Markup renders the fallback portfolio. It shows at most 10 skills, 3 jobs
// with 3 bullets each, and 3 projects.
func (LocalMarkup) Markup(_ context.Context, p profile.Profile) (html string, err error) {
	view := portfolioView{
		Name:     p.Name,
		Headline: p.CurrentTitle(),
		Email:    p.Email,
		Phone:    p.Phone,
		Location: p.Location(),
		LinkedIn: p.LinkedInURL,
		GitHub:   githubURL(p.GitHub()),
	}

	skills := p.Skills
	if len(skills) > portfolioSkillLimit {
		skills = skills[:portfolioSkillLimit]
	}
	view.Skills = skills

	for i, job := range p.WorkHistory {
		if i == portfolioJobLimit {
			break
		}
		bullets := job.Bullets
		if len(bullets) > portfolioBulletLimit {
			bullets = bullets[:portfolioBulletLimit]
		}
		view.Jobs = append(view.Jobs, jobView{Title: job.Title, Company: job.Company, Dates: job.Dates, Bullets: bullets})
	}

	for i, proj := range p.Projects {
		if i == portfolioProjectLimit {
			break
		}
		view.Projects = append(view.Projects, projectView{
			Name:         proj.Name,
			Description:  proj.Description,
			Technologies: proj.Technologies,
			Link:         proj.Link,
		})
	}

	for _, edu := range p.Education {
		view.Education = append(view.Education, educationView{Degree: edu.Degree, Institution: edu.Institution, Year: edu.Year})
	}

	var buf bytes.Buffer
	err = portfolioTemplate.Execute(&buf, view)
	if err != nil {
		err = errors.Wrap(err, "failed to render portfolio template")
		return html, err
	}

	html = buf.String()
	return html, err
}

func githubURL(github string) string {
	github = strings.TrimSpace(github)
	if github == "" || strings.HasPrefix(github, "http") {
		return github
	}
	if strings.HasPrefix(github, "github.com") {
		return "https://" + github
	}
	return "https://github.com/" + strings.TrimPrefix(github, "@")
}

// PortfolioResult is the outcome of building the portfolio page.
type PortfolioResult struct {
	Artifact     Artifact
	Slug         string
	UsedFallback bool
	RemoteErr    error
}

// Portfolio tries a remote source first and falls back to the local template.
type Portfolio struct {
	remote MarkupSource
	local  LocalMarkup
	logger zerolog.Logger
}

// NewPortfolio creates a portfolio builder. remote may be nil.
func NewPortfolio(remote MarkupSource, logger zerolog.Logger) (pf *Portfolio) {
	pf = &Portfolio{remote: remote, logger: logger}
	return pf
}

// Build produces the portfolio artifact and slug. Remote failures are logged
// and recovered by the local template.
func (pf *Portfolio) Build(ctx context.Context, p profile.Profile, seed string) (result PortfolioResult, err error) {
	result.Slug = Slug(p.Name, seed)

	var html string
	if pf.remote != nil {
		html, result.RemoteErr = pf.remote.Markup(ctx, p)
		if result.RemoteErr != nil {
			pf.logger.Warn().Err(result.RemoteErr).Msg("portfolio generation failed, using template")
		}
	}

	if pf.remote == nil || result.RemoteErr != nil {
		result.UsedFallback = true
		html, err = pf.local.Markup(ctx, p)
		if err != nil {
			err = &RenderError{Format: KindMarkup, Err: err}
			return result, err
		}
	}

	result.Artifact = Artifact{
		Kind:        KindMarkup,
		Filename:    "index.html",
		ContentType: ContentTypeHTML,
		Data:        []byte(html),
	}
	return result, err
}
