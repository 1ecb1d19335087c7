package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/portfolio-forge/pkg/orchestrator"
	"github.com/nikogura/portfolio-forge/pkg/renderer"
	"github.com/nikogura/portfolio-forge/pkg/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var generateOutputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var generateSeed string

//nolint:gochecknoglobals // Cobra boilerplate
var generateCV bool

//nolint:gochecknoglobals // Cobra boilerplate
var generatePersist bool

//nolint:gochecknoglobals // Cobra boilerplate
var generateShowDate bool

//nolint:gochecknoglobals // Cobra boilerplate
var generateCmd = &cobra.Command{
	Use:   "generate <profile.json>",
	Short: "Generate the portfolio page, ATS résumé and CV",
	Long: `Generate a portfolio web page plus an ATS-friendly résumé in PDF and DOCX from a
saved profile. Each format is produced independently: if one fails the others are
still written. When the AI service is unavailable the portfolio falls back to a
built-in template.

Use --cv to also produce the extended CV, and --persist to publish the portfolio
and upload the files for the signed-in account.

Example:
  portfolio-forge generate jane.profile.json
  portfolio-forge generate jane.profile.json --cv --output-dir ~/Documents/Portfolio
  portfolio-forge generate jane.profile.json --persist`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&generateOutputDir, "output-dir", "", "Output directory (default from config)")
	generateCmd.Flags().StringVar(&generateSeed, "seed", "", "Slug seed (default: account id when persisting, else a hash of the profile)")
	generateCmd.Flags().BoolVar(&generateCV, "cv", false, "Also generate the extended CV")
	generateCmd.Flags().BoolVar(&generatePersist, "persist", false, "Save the portfolio and upload files for the signed-in account")
	generateCmd.Flags().BoolVar(&generateShowDate, "show-date", false, "Add a generated-on line to the PDF documents")
}

func runGenerate(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var a app
	a, err = loadApp()
	if err != nil {
		return err
	}

	var opts []orchestrator.Option
	opts = append(opts, orchestrator.WithRenderOptions(renderer.WithRenderOptions(renderer.Options{ShowGenerated: generateShowDate})))

	var b backend
	if generatePersist {
		b, err = openBackend(ctx, a)
		if err != nil {
			return err
		}
		defer b.Close()

		opts = append(opts,
			orchestrator.WithPortfolioStore(store.NewPortfolios(b.db)),
			orchestrator.WithResumeStore(store.NewResumes(b.db)),
		)
		if b.blobs != nil {
			opts = append(opts, orchestrator.WithBlobStore(b.blobs))
		}
	}

	o := a.orchestrator(opts...)

	var s *orchestrator.Session
	s, err = o.FromFile(args[0])
	if err != nil {
		return err
	}
	printWarnings(s.Validation)

	var userID uuid.UUID
	seed := generateSeed
	if generatePersist {
		userID, _, err = b.currentUser(ctx)
		if err != nil {
			return err
		}
		if seed == "" {
			seed = userID.String()
		}
	}
	if seed == "" {
		seed = renderer.ContentHash(s.Profile)
	}

	spin := newSpinner("Generating portfolio...")
	spin.start()
	bundle := o.Generate(ctx, s, seed)
	spin.stopSpinner()

	outDir := getOutputDir(generateOutputDir, a.cfg.Defaults.OutputDir)

	artifacts := bundle.Artifacts()
	if generateCV {
		cv := o.GenerateCV(ctx, s)
		artifacts = append(artifacts, cv.Artifacts()...)
		bundle.Errors = append(bundle.Errors, cv.Errors...)
	}

	var paths []string
	paths, err = renderer.WriteArtifacts(outDir, artifacts...)
	if err != nil {
		return err
	}

	for _, p := range paths {
		fmt.Printf("Saved: %s\n", p)
	}

	if bundle.UsedFallback {
		fmt.Println("Note: the AI service was unavailable, so the portfolio uses the built-in template.")
	}

	for _, msg := range bundle.Errors {
		fmt.Printf("Warning: %s\n", msg)
	}

	if len(paths) == 0 {
		err = errors.New("no files could be generated")
		return err
	}

	if generatePersist {
		err = persistSession(ctx, o, s, userID)
		if err != nil {
			return err
		}
	}

	fmt.Printf("\nPortfolio address: %s\n", bundle.Slug)
	return err
}

func persistSession(ctx context.Context, o *orchestrator.Orchestrator, s *orchestrator.Session, userID uuid.UUID) (err error) {
	spin := newSpinner("Publishing...")
	spin.start()
	record, err := o.Persist(ctx, s, userID)
	spin.stopSpinner()

	if record.Version > 0 {
		fmt.Printf("Published version %d at %s\n", record.Version, record.Slug)
	}
	for _, object := range s.Objects {
		fmt.Printf("Uploaded: %s\n", object)
	}

	if err != nil {
		err = errors.Wrap(err, "publishing incomplete")
	}
	return err
}
