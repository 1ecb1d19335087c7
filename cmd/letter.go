package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nikogura/portfolio-forge/pkg/llm"
	"github.com/nikogura/portfolio-forge/pkg/profile"
	"github.com/nikogura/portfolio-forge/pkg/renderer"
	"github.com/nikogura/portfolio-forge/pkg/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var letterTone string

//nolint:gochecknoglobals // Cobra boilerplate
var letterFormats []string

//nolint:gochecknoglobals // Cobra boilerplate
var letterOutputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var letterPersist bool

//nolint:gochecknoglobals // Cobra boilerplate
var letterCmd = &cobra.Command{
	Use:   "letter <profile.json> <jd-file-or-url>",
	Short: "Write a cover letter for a job description",
	Long: `Write a cover letter from a saved profile and a job description.

The job description can be a file path, a URL, or "-" to read stdin. It must be
between 50 and 5000 characters. Use --persist to keep the letter in the signed-in
account's history.

Example:
  portfolio-forge letter jane.profile.json jd.txt
  portfolio-forge letter jane.profile.json https://example.com/jobs/123 --tone friendly
  portfolio-forge letter jane.profile.json jd.txt --format pdf,txt
  portfolio-forge letter jane.profile.json jd.txt --persist`,
	Args: cobra.ExactArgs(2),
	RunE: runLetter,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(letterCmd)
	letterCmd.Flags().StringVar(&letterTone, "tone", string(llm.ToneFormal), "Tone: formal, friendly or technical")
	letterCmd.Flags().StringSliceVar(&letterFormats, "format", []string{"pdf", "docx", "txt"}, "Output formats: pdf, docx, txt")
	letterCmd.Flags().StringVar(&letterOutputDir, "output-dir", "", "Output directory (default from config)")
	letterCmd.Flags().BoolVar(&letterPersist, "persist", false, "Save the letter to the signed-in account's history")
}

func letterArtifacts(p profile.Profile, letter string, formats []string) (artifacts []renderer.Artifact, err error) {
	opts := renderer.Options{}
	for _, format := range formats {
		var artifact renderer.Artifact
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "pdf":
			artifact, err = renderer.RenderLetterPDF(p, letter, opts)
		case "docx":
			artifact, err = renderer.RenderLetterDOCX(p, letter, opts)
		case "txt", "text":
			artifact = renderer.LetterText(p, letter)
		default:
			err = errors.Errorf("unknown format %q: must be pdf, docx or txt", format)
		}
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, err
}

func runLetter(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	var a app
	a, err = loadApp()
	if err != nil {
		return err
	}

	var p profile.Profile
	p, err = loadProfile(args[0])
	if err != nil {
		return err
	}

	var jobDescription string
	jobDescription, err = readJobDescription(ctx, args[1])
	if err != nil {
		return err
	}

	spin := newSpinner("Writing cover letter...")
	spin.start()
	letter, err := llm.NewCareer(a.gen).CoverLetter(ctx, p, jobDescription, llm.Tone(letterTone))
	spin.stopSpinner()
	if err != nil {
		return explain(err)
	}

	var artifacts []renderer.Artifact
	artifacts, err = letterArtifacts(p, letter, letterFormats)
	if err != nil {
		return err
	}

	var paths []string
	paths, err = renderer.WriteArtifacts(getOutputDir(letterOutputDir, a.cfg.Defaults.OutputDir), artifacts...)
	if err != nil {
		return err
	}

	if getVerbose() {
		fmt.Println(letter)
		fmt.Println()
	}

	for _, path := range paths {
		fmt.Printf("Saved: %s\n", path)
	}

	if letterPersist {
		err = saveLetter(ctx, a, store.CoverLetter{
			JobDescription: jobDescription,
			Tone:           letterTone,
			Content:        letter,
		})
	}
	return err
}

func saveLetter(ctx context.Context, a app, l store.CoverLetter) (err error) {
	var b backend
	b, err = openBackend(ctx, a)
	if err != nil {
		return err
	}
	defer b.Close()

	l.UserID, _, err = b.currentUser(ctx)
	if err != nil {
		return err
	}

	var saved store.CoverLetter
	saved, err = store.NewCoverLetters(b.db).Save(ctx, l)
	if err != nil {
		return err
	}

	fmt.Printf("Recorded cover letter %s\n", saved.ID)
	return err
}
