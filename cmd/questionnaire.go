package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikogura/portfolio-forge/pkg/intake"
	"github.com/nikogura/portfolio-forge/pkg/logging"
	"github.com/nikogura/portfolio-forge/pkg/orchestrator"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

//nolint:gochecknoglobals // Cobra boilerplate
var questionnaireOut string

//nolint:gochecknoglobals // Cobra boilerplate
var questionnaireCmd = &cobra.Command{
	Use:   "questionnaire <answers.yaml|answers.json>",
	Short: "Build a profile from questionnaire answers",
	Long: `Build a profile from guided questionnaire answers, without any AI call.

Responsibilities are one bullet per line; skills and technologies are comma
separated.

Example answers.yaml:
  name: Jane Doe
  email: jane@example.com
  jobs:
    - title: Engineer
      company: Acme
      start: "2021"
      responsibilities: |
        Built the billing service
        Cut deploy time in half
  skills: Go, PostgreSQL, Kubernetes`,
	Args: cobra.ExactArgs(1),
	RunE: runQuestionnaire,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(questionnaireCmd)
	questionnaireCmd.Flags().StringVarP(&questionnaireOut, "out", "o", "", "Profile output file (default <input>.profile.json)")
}

func readAnswers(path string) (answers intake.Answers, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read answers: %s", path)
		return answers, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &answers)
	default:
		err = json.Unmarshal(data, &answers)
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to parse answers: %s", path)
	}
	return answers, err
}

func runQuestionnaire(cmd *cobra.Command, args []string) (err error) {
	var answers intake.Answers
	answers, err = readAnswers(args[0])
	if err != nil {
		return err
	}

	// No generation call is made, so no API key is needed.
	var logger zerolog.Logger
	logger, err = logging.New(logging.Config{Level: verboseLevel()})
	if err != nil {
		return err
	}

	s := orchestrator.New(nil, orchestrator.WithLogger(logger)).FromQuestionnaire(answers)

	err = saveSession(s, profileOutPath(questionnaireOut, args[0]))
	return err
}
