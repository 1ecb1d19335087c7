// Package orchestrator sequences intake, validation, assembly and persistence
// for one user session.
package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/portfolio-forge/pkg/intake"
	"github.com/nikogura/portfolio-forge/pkg/llm"
	"github.com/nikogura/portfolio-forge/pkg/profile"
	"github.com/nikogura/portfolio-forge/pkg/renderer"
	"github.com/nikogura/portfolio-forge/pkg/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// PortfolioStore saves the published portfolio record.
type PortfolioStore interface {
	Upsert(ctx context.Context, p store.Portfolio) (store.Portfolio, error)
}

// BlobStore keeps the downloadable artifacts.
type BlobStore interface {
	Put(ctx context.Context, userID, filename, contentType string, data []byte) (string, error)
}

// ResumeStore records each published version and its uploaded files.
type ResumeStore interface {
	Save(ctx context.Context, r store.Resume) (store.Resume, error)
}

// Session is one user's working state. It is not safe for concurrent use.
type Session struct {
	ID         uuid.UUID
	Profile    profile.Profile
	Validation profile.Result
	RawText    string
	Confidence float64
	Bundle     *renderer.Bundle
	CV         *renderer.Bundle
	Objects    []string
	UpdatedAt  time.Time
}

// Orchestrator wires the intake adapters to the assembler and the stores.
type Orchestrator struct {
	documents  *intake.DocumentExtractor
	fetcher    *intake.Fetcher
	manual     *intake.ManualText
	assembler  *renderer.Assembler
	portfolios PortfolioStore
	blobs      BlobStore
	resumes    ResumeStore
	intakeOpts []intake.Option
	renderOpts []renderer.Option
	logger     zerolog.Logger
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger passed down to every component.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithIntakeOptions appends options for the intake adapters.
func WithIntakeOptions(opts ...intake.Option) Option {
	return func(o *Orchestrator) {
		o.intakeOpts = append(o.intakeOpts, opts...)
	}
}

// WithRenderOptions appends options for the assembler.
func WithRenderOptions(opts ...renderer.Option) Option {
	return func(o *Orchestrator) {
		o.renderOpts = append(o.renderOpts, opts...)
	}
}

// WithPortfolioStore enables Persist.
func WithPortfolioStore(s PortfolioStore) Option {
	return func(o *Orchestrator) {
		o.portfolios = s
	}
}

// WithBlobStore uploads artifacts on Persist.
func WithBlobStore(s BlobStore) Option {
	return func(o *Orchestrator) {
		o.blobs = s
	}
}

// WithResumeStore keeps a history entry for every Persist.
func WithResumeStore(s ResumeStore) Option {
	return func(o *Orchestrator) {
		o.resumes = s
	}
}

// New builds an Orchestrator around a generation client.
func New(gen llm.Generator, opts ...Option) (o *Orchestrator) {
	o = &Orchestrator{
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	intakeOpts := append([]intake.Option{intake.WithLogger(o.logger)}, o.intakeOpts...)
	o.intakeOpts = intakeOpts
	o.documents = intake.NewDocumentExtractor(gen, intakeOpts...)
	o.fetcher = intake.NewFetcher(gen, intakeOpts...)
	o.manual = intake.NewManualText(gen, intakeOpts...)

	renderOpts := append([]renderer.Option{renderer.WithLogger(o.logger)}, o.renderOpts...)
	o.assembler = renderer.NewAssembler(gen, renderOpts...)

	return o
}

func (o *Orchestrator) session(result intake.Result) (s *Session) {
	s = &Session{
		ID:         uuid.New(),
		Profile:    result.Profile,
		Validation: result.Validation,
		RawText:    result.RawText,
		Confidence: result.Confidence,
		UpdatedAt:  o.now(),
	}

	o.logger.Info().
		Str("session", s.ID.String()).
		Str("provenance", string(s.Profile.Metadata.Provenance)).
		Float64("confidence", s.Confidence).
		Bool("valid", s.Validation.Valid()).
		Msg("Profile ready")

	return s
}

// FromUpload starts a session from a résumé file. Size and extension are
// checked before any parsing.
func (o *Orchestrator) FromUpload(ctx context.Context, filename string, data []byte) (s *Session, err error) {
	err = intake.ValidateUpload(filename, int64(len(data)))
	if err != nil {
		return s, err
	}

	var result intake.Result
	result, err = o.documents.Extract(ctx, data, filename)
	if err != nil {
		return s, err
	}

	s = o.session(result)
	return s, err
}

// FromProfileURL starts a session by fetching a public profile page.
func (o *Orchestrator) FromProfileURL(ctx context.Context, rawURL string) (s *Session, err error) {
	var result intake.Result
	result, err = o.fetcher.FetchProfile(ctx, rawURL)
	if err != nil {
		return s, err
	}

	s = o.session(result)
	return s, err
}

// FromManualText starts a session from pasted profile text.
func (o *Orchestrator) FromManualText(ctx context.Context, text, sourceURL string) (s *Session, err error) {
	var result intake.Result
	result, err = o.manual.Extract(ctx, text, sourceURL)
	if err != nil {
		return s, err
	}

	s = o.session(result)
	return s, err
}

// FromQuestionnaire starts a session from guided answers. It cannot fail.
func (o *Orchestrator) FromQuestionnaire(answers intake.Answers) (s *Session) {
	s = o.session(intake.Questionnaire(answers, o.intakeOpts...))
	return s
}

// FromFile starts a session from a saved profile file.
func (o *Orchestrator) FromFile(path string) (s *Session, err error) {
	var validation profile.Result
	validation, err = profile.Load(path)
	if err != nil {
		return s, err
	}

	s = o.session(intake.Result{
		Profile:    validation.Profile,
		Validation: validation,
		Confidence: validation.Profile.Metadata.Confidence,
	})
	return s, err
}

// Generate assembles the portfolio, PDF and DOCX for the session's profile.
// Any previous bundle and CV are discarded. seed defaults to the session id.
func (o *Orchestrator) Generate(ctx context.Context, s *Session, seed string) (bundle renderer.Bundle) {
	if seed == "" {
		seed = s.ID.String()
	}

	bundle = o.assembler.Assemble(ctx, s.Profile, seed)
	s.Bundle = &bundle
	s.CV = nil
	s.Objects = nil
	s.UpdatedAt = o.now()
	return bundle
}

// GenerateCV assembles the extended CV, replacing any previous one.
func (o *Orchestrator) GenerateCV(ctx context.Context, s *Session) (bundle renderer.Bundle) {
	bundle = o.assembler.AssembleCV(ctx, s.Profile)
	s.CV = &bundle
	s.UpdatedAt = o.now()
	return bundle
}

// Persist saves the session's portfolio for userID and uploads its artifacts.
// The record is written before any upload. The first upload failure is
// returned after the remaining uploads are attempted.
func (o *Orchestrator) Persist(ctx context.Context, s *Session, userID uuid.UUID) (record store.Portfolio, err error) {
	if o.portfolios == nil {
		err = errors.New("no portfolio store configured")
		return record, err
	}

	if s.Bundle == nil || s.Bundle.Portfolio == nil {
		err = errors.New("nothing to persist: generate the portfolio first")
		return record, err
	}

	var data []byte
	data, err = json.Marshal(s.Profile)
	if err != nil {
		err = errors.Wrap(err, "failed to encode profile")
		return record, err
	}

	record, err = o.portfolios.Upsert(ctx, store.Portfolio{
		UserID:      userID,
		ProfileData: data,
		HTML:        string(s.Bundle.Portfolio.Data),
		Slug:        s.Bundle.Slug,
	})
	if err != nil {
		return record, err
	}

	o.logger.Info().Str("user", userID.String()).Int("version", record.Version).Str("slug", record.Slug).Msg("Portfolio saved")

	s.Objects = nil
	if o.blobs != nil {
		err = o.upload(ctx, s, userID)
	}

	if o.resumes != nil {
		_, saveErr := o.resumes.Save(ctx, store.Resume{
			UserID:      userID,
			PortfolioID: record.ID,
			Version:     record.Version,
			Objects:     s.Objects,
		})
		if saveErr != nil {
			o.logger.Warn().Err(saveErr).Msg("Resume history not recorded")
			if err == nil {
				err = saveErr
			}
		}
	}

	return record, err
}

// upload stores every artifact of the session, recording the object keys that
// succeeded in s.Objects. The first failure is returned after all attempts.
func (o *Orchestrator) upload(ctx context.Context, s *Session, userID uuid.UUID) (err error) {
	artifacts := s.Bundle.Artifacts()
	if s.CV != nil {
		artifacts = append(artifacts, s.CV.Artifacts()...)
	}

	for _, a := range artifacts {
		object, putErr := o.blobs.Put(ctx, userID.String(), a.Filename, a.ContentType, a.Data)
		if putErr != nil {
			o.logger.Warn().Err(putErr).Str("file", a.Filename).Msg("Artifact upload failed")
			if err == nil {
				err = putErr
			}
			continue
		}
		s.Objects = append(s.Objects, object)
	}

	return err
}
