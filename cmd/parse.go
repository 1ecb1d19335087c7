package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikogura/portfolio-forge/pkg/orchestrator"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var parseOut string

//nolint:gochecknoglobals // Cobra boilerplate
var parseCmd = &cobra.Command{
	Use:   "parse <resume.pdf|resume.docx>",
	Short: "Extract a profile from a résumé file",
	Long: `Extract a structured profile from a PDF or DOCX résumé (5 MB maximum) and save it
as JSON for the generate command.

Example:
  portfolio-forge parse resume.pdf
  portfolio-forge parse resume.docx --out jane.json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseOut, "out", "o", "", "Profile output file (default <input>.profile.json)")
}

// profileOutPath derives the default profile filename from the input.
func profileOutPath(flagValue, input string) string {
	if flagValue != "" {
		return flagValue
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return base + ".profile.json"
}

func runParse(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	var a app
	a, err = loadApp()
	if err != nil {
		return err
	}

	var data []byte
	data, err = os.ReadFile(args[0])
	if err != nil {
		err = errors.Wrapf(err, "failed to read résumé: %s", args[0])
		return err
	}

	spin := newSpinner("Extracting profile...")
	spin.start()

	var s *orchestrator.Session
	s, err = a.orchestrator().FromUpload(ctx, filepath.Base(args[0]), data)
	spin.stopSpinner()
	if err != nil {
		return explain(err)
	}

	err = saveSession(s, profileOutPath(parseOut, args[0]))
	return err
}
