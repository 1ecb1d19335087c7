package cmd

import (
	"fmt"

	"github.com/nikogura/portfolio-forge/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long: `Create a default configuration file at $HOME/.portfolio-forge/config.json, or at the
path given by --config. A .yaml or .yml path produces a YAML file.

Example:
  portfolio-forge init
  portfolio-forge init --config ./forge.yaml`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	path := getConfigFile()
	if path == "" {
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	err = config.InitConfig(path)
	if err != nil {
		return err
	}

	fmt.Printf("Config written to: %s\n", path)
	fmt.Println("Add your Groq or Anthropic API key before running other commands.")
	return err
}
