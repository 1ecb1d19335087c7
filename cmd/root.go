package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "portfolio-forge",
	Short: "Turn a résumé or profile into a portfolio site, ATS résumé and CV",
	Long: `portfolio-forge builds a structured career profile from a résumé file, a LinkedIn
profile or a short questionnaire, then generates a portfolio web page, an ATS-friendly
résumé (PDF and DOCX) and an extended CV.

It also drafts cover letters, generates interview practice questions, scores a résumé
against a job description and offers a career coaching chat.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file, JSON or YAML (default is $HOME/.portfolio-forge/config.json)")
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}
