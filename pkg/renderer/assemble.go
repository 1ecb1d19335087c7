package renderer

import (
	"context"
	"fmt"

	"github.com/nikogura/portfolio-forge/pkg/llm"
	"github.com/nikogura/portfolio-forge/pkg/profile"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type renderFunc func(p profile.Profile, opts Options) (Artifact, error)

// Bundle is the result of assembling every format. Formats fail
// independently, so any subset may be present.
type Bundle struct {
	Portfolio    *Artifact
	PDF          *Artifact
	DOCX         *Artifact
	Slug         string
	UsedFallback bool
	Succeeded    []Kind
	Errors       []string
}

// Artifacts returns the produced artifacts in a fixed order.
func (b Bundle) Artifacts() (artifacts []Artifact) {
	for _, a := range []*Artifact{b.Portfolio, b.PDF, b.DOCX} {
		if a != nil {
			artifacts = append(artifacts, *a)
		}
	}
	return artifacts
}

// Assembler renders all output formats for a profile.
type Assembler struct {
	portfolio *Portfolio
	opts      Options
	logger    zerolog.Logger

	renderPDF    renderFunc
	renderDOCX   renderFunc
	renderCVPDF  renderFunc
	renderCVDOCX renderFunc
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the assembler logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// WithRenderOptions sets the options passed to every renderer.
func WithRenderOptions(opts Options) Option {
	return func(a *Assembler) {
		a.opts = opts
	}
}

// WithMarkupSource replaces the remote portfolio source.
func WithMarkupSource(source MarkupSource) Option {
	return func(a *Assembler) {
		a.portfolio.remote = source
	}
}

// NewAssembler creates an assembler. gen may be nil, in which case the
// portfolio always uses the local template.
func NewAssembler(gen llm.Generator, opts ...Option) (a *Assembler) {
	a = &Assembler{
		portfolio:    &Portfolio{},
		logger:       zerolog.Nop(),
		renderPDF:    RenderResumePDF,
		renderDOCX:   RenderResumeDOCX,
		renderCVPDF:  RenderCVPDF,
		renderCVDOCX: RenderCVDOCX,
	}
	if gen != nil {
		a.portfolio.remote = NewRemoteMarkup(gen, a.logger)
	}
	for _, opt := range opts {
		opt(a)
	}
	a.portfolio.logger = a.logger
	if remote, ok := a.portfolio.remote.(*RemoteMarkup); ok {
		remote.logger = a.logger
	}
	return a
}

// Assemble renders the portfolio page and the ATS résumé in PDF and DOCX.
// An empty seed uses the profile's content hash for the slug.
func (a *Assembler) Assemble(ctx context.Context, p profile.Profile, seed string) (bundle Bundle) {
	if seed == "" {
		seed = ContentHash(p)
	}

	var (
		portfolio       PortfolioResult
		pdf, docx       Artifact
		portErr, pdfErr error
		docxErr         error
		group           errgroup.Group
	)

	// Each goroutine reports through its own variable and returns nil so a
	// failure never cancels the others.
	group.Go(func() error {
		portfolio, portErr = a.portfolio.Build(ctx, p, seed)
		return nil
	})
	group.Go(func() error {
		pdf, pdfErr = a.renderPDF(p, a.opts)
		return nil
	})
	group.Go(func() error {
		docx, docxErr = a.renderDOCX(p, a.opts)
		return nil
	})
	_ = group.Wait()

	bundle.Slug = portfolio.Slug
	if bundle.Slug == "" {
		bundle.Slug = Slug(p.Name, seed)
	}
	bundle.UsedFallback = portfolio.UsedFallback

	bundle.collect(KindMarkup, "Portfolio", portfolio.Artifact, portErr, &bundle.Portfolio)
	bundle.collect(KindPaginated, "PDF", pdf, pdfErr, &bundle.PDF)
	bundle.collect(KindWordProcessor, "DOCX", docx, docxErr, &bundle.DOCX)

	a.log(bundle)
	return bundle
}

// AssembleCV renders the extended CV in PDF and DOCX.
func (a *Assembler) AssembleCV(_ context.Context, p profile.Profile) (bundle Bundle) {
	var (
		pdf, docx       Artifact
		pdfErr, docxErr error
		group           errgroup.Group
	)

	group.Go(func() error {
		pdf, pdfErr = a.renderCVPDF(p, a.opts)
		return nil
	})
	group.Go(func() error {
		docx, docxErr = a.renderCVDOCX(p, a.opts)
		return nil
	})
	_ = group.Wait()

	bundle.Slug = Slug(p.Name, ContentHash(p))
	bundle.collect(KindPaginated, "PDF", pdf, pdfErr, &bundle.PDF)
	bundle.collect(KindWordProcessor, "DOCX", docx, docxErr, &bundle.DOCX)

	a.log(bundle)
	return bundle
}

func (b *Bundle) collect(kind Kind, label string, artifact Artifact, err error, slot **Artifact) {
	if err != nil {
		b.Errors = append(b.Errors, fmt.Sprintf("%s: %v", label, err))
		return
	}
	a := artifact
	*slot = &a
	b.Succeeded = append(b.Succeeded, kind)
}

func (a *Assembler) log(bundle Bundle) {
	if len(bundle.Errors) > 0 {
		a.logger.Warn().Strs("errors", bundle.Errors).Int("succeeded", len(bundle.Succeeded)).Msg("assembly partially failed")
		return
	}
	a.logger.Info().Str("slug", bundle.Slug).Int("artifacts", len(bundle.Succeeded)).Msg("assembly complete")
}
