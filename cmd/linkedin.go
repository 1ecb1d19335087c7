package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/nikogura/portfolio-forge/pkg/intake"
	"github.com/nikogura/portfolio-forge/pkg/orchestrator"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var linkedinOut string

//nolint:gochecknoglobals // Cobra boilerplate
var linkedinPaste string

//nolint:gochecknoglobals // Cobra boilerplate
var linkedinCmd = &cobra.Command{
	Use:   "linkedin <profile-url>",
	Short: "Extract a profile from a LinkedIn page",
	Long: `Fetch a public LinkedIn profile and extract a structured profile from it.

LinkedIn often blocks automated access. When that happens, copy the text of your
profile page and pass it with --paste (a file, or "-" for stdin).

Example:
  portfolio-forge linkedin https://www.linkedin.com/in/jane-doe
  portfolio-forge linkedin https://www.linkedin.com/in/jane-doe --paste profile.txt
  pbpaste | portfolio-forge linkedin --paste -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLinkedIn,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(linkedinCmd)
	linkedinCmd.Flags().StringVarP(&linkedinOut, "out", "o", "linkedin.profile.json", "Profile output file")
	linkedinCmd.Flags().StringVar(&linkedinPaste, "paste", "", `Pasted profile text file, or "-" for stdin`)
}

func readPaste(source string) (text string, err error) {
	var data []byte
	if source == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		err = errors.Wrap(err, "failed to read pasted profile text")
		return text, err
	}
	text = string(data)
	return text, err
}

func runLinkedIn(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	var url string
	if len(args) == 1 {
		url = args[0]
	}

	if url == "" && linkedinPaste == "" {
		err = errors.New("a profile URL or --paste is required")
		return err
	}

	if url != "" && !intake.IsValidProfileURL(url) {
		err = errors.Errorf("invalid LinkedIn URL %q: expected https://www.linkedin.com/in/your-name", url)
		return err
	}

	var a app
	a, err = loadApp()
	if err != nil {
		return err
	}

	o := a.orchestrator()

	var s *orchestrator.Session
	if linkedinPaste != "" {
		var text string
		text, err = readPaste(linkedinPaste)
		if err != nil {
			return err
		}

		spin := newSpinner("Extracting profile...")
		spin.start()
		s, err = o.FromManualText(ctx, text, url)
		spin.stopSpinner()
	} else {
		spin := newSpinner("Fetching profile...")
		spin.start()
		s, err = o.FromProfileURL(ctx, url)
		spin.stopSpinner()
	}
	if err != nil {
		return explain(err)
	}

	err = saveSession(s, linkedinOut)
	return err
}
