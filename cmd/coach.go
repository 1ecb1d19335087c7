package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nikogura/portfolio-forge/pkg/llm"
	"github.com/nikogura/portfolio-forge/pkg/profile"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var coachCmd = &cobra.Command{
	Use:   "coach <profile.json>",
	Short: "Chat with a career coach about your profile",
	Long: `Start an interactive career coaching chat. The coach sees your profile and the
last few turns of the conversation. Type "quit" or send EOF to finish.

Example:
  portfolio-forge coach jane.profile.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCoach,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(coachCmd)
}

func runCoach(cmd *cobra.Command, args []string) (err error) {
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

	career := llm.NewCareer(a.gen)
	scanner := bufio.NewScanner(os.Stdin)

	var history []llm.Turn
	fmt.Printf("Career coach for %s. Ask anything; type \"quit\" to finish.\n", displayName(p))

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}

		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if strings.EqualFold(message, "quit") || strings.EqualFold(message, "exit") {
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		spin := newSpinner("Thinking...")
		spin.start()
		reply, replyErr := career.Coach(ctx, p, history, message)
		spin.stopSpinner()
		cancel()

		if replyErr != nil {
			fmt.Printf("Warning: %s\n", explain(replyErr))
			continue
		}

		fmt.Printf("\n%s\n", reply)
		history = append(history,
			llm.Turn{Role: "user", Content: message},
			llm.Turn{Role: "assistant", Content: reply},
		)
	}

	return err
}
