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
var interviewKind string

//nolint:gochecknoglobals // Cobra boilerplate
var interviewCount int

//nolint:gochecknoglobals // Cobra boilerplate
var interviewPractice bool

//nolint:gochecknoglobals // Cobra boilerplate
var interviewCmd = &cobra.Command{
	Use:   "interview <profile.json>",
	Short: "Generate interview practice questions",
	Long: `Generate interview questions tailored to a profile, with the key points a strong
answer covers and the mistakes to avoid.

With --practice, answer each question at the prompt and get feedback on it.

Example:
  portfolio-forge interview jane.profile.json
  portfolio-forge interview jane.profile.json --kind behavioral --count 3 --practice`,
	Args: cobra.ExactArgs(1),
	RunE: runInterview,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(interviewCmd)
	interviewCmd.Flags().StringVar(&interviewKind, "kind", string(llm.InterviewMixed), `Question kind: technical, behavioral, "system design" or mixed`)
	interviewCmd.Flags().IntVar(&interviewCount, "count", 5, "Number of questions (3-10)")
	interviewCmd.Flags().BoolVar(&interviewPractice, "practice", false, "Answer each question and get feedback")
}

func printQuestion(i int, q llm.InterviewQuestion) {
	fmt.Printf("\n%d. %s\n", i+1, q.Question)
	if len(q.KeyPoints) > 0 {
		fmt.Println("   Key points:")
		for _, point := range q.KeyPoints {
			fmt.Printf("   - %s\n", point)
		}
	}
	if len(q.Mistakes) > 0 {
		fmt.Println("   Avoid:")
		for _, mistake := range q.Mistakes {
			fmt.Printf("   - %s\n", mistake)
		}
	}
}

// readBlock reads lines until an empty line or EOF.
func readBlock(scanner *bufio.Scanner) (text string, ok bool) {
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
		ok = true
	}
	text = strings.Join(lines, "\n")
	return text, ok
}

func runInterview(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
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

	career := llm.NewCareer(a.gen)

	spin := newSpinner("Preparing questions...")
	spin.start()
	questions, err := career.InterviewQuestions(ctx, p, llm.InterviewKind(interviewKind), interviewCount)
	spin.stopSpinner()
	if err != nil {
		return explain(err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for i, q := range questions {
		if !interviewPractice {
			printQuestion(i, q)
			continue
		}

		fmt.Printf("\n%d. %s\n", i+1, q.Question)
		fmt.Println("Your answer (finish with an empty line):")

		answer, ok := readBlock(scanner)
		if !ok {
			printQuestion(i, q)
			continue
		}

		spin = newSpinner("Reviewing answer...")
		spin.start()
		feedback, fbErr := career.AnswerFeedback(ctx, q.Question, answer)
		spin.stopSpinner()
		if fbErr != nil {
			fmt.Printf("Warning: %s\n", explain(fbErr))
			continue
		}
		fmt.Printf("\n%s\n", feedback)
	}

	return err
}
