package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/portfolio-forge/pkg/llm"
	"github.com/nikogura/portfolio-forge/pkg/profile"
	"github.com/nikogura/portfolio-forge/pkg/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var optimizeJSON bool

//nolint:gochecknoglobals // Cobra boilerplate
var optimizePersist bool

//nolint:gochecknoglobals // Cobra boilerplate
var optimizeCmd = &cobra.Command{
	Use:   "optimize <profile.json> <jd-file-or-url>",
	Short: "Score a profile against a job description",
	Long: `Score how well a profile matches a job description for applicant tracking systems,
listing strengths, missing keywords and concrete suggestions.

With --persist the score is saved to the signed-in account, and the previous
score against the same job description is shown for comparison.

Example:
  portfolio-forge optimize jane.profile.json jd.txt
  portfolio-forge optimize jane.profile.json https://example.com/jobs/123 --json
  portfolio-forge optimize jane.profile.json jd.txt --persist`,
	Args: cobra.ExactArgs(2),
	RunE: runOptimize,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(optimizeCmd)
	optimizeCmd.Flags().BoolVar(&optimizeJSON, "json", false, "Print the result as JSON")
	optimizeCmd.Flags().BoolVar(&optimizePersist, "persist", false, "Save the score to the signed-in account's history")
}

func printOptimization(result llm.Optimization) {
	fmt.Printf("\nATS match score: %d/100\n", result.Score)

	sections := []struct {
		title string
		items []string
	}{
		{"Strengths", result.Strengths},
		{"Missing keywords", result.MissingKeywords},
		{"Suggestions", result.Suggestions},
	}

	for _, section := range sections {
		if len(section.items) == 0 {
			continue
		}
		fmt.Printf("\n%s:\n", section.title)
		for _, item := range section.items {
			fmt.Printf("  - %s\n", item)
		}
	}
}

func runOptimize(cmd *cobra.Command, args []string) (err error) {
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

	spin := newSpinner("Analyzing...")
	spin.start()
	result, err := llm.NewCareer(a.gen).Optimize(ctx, p, jobDescription)
	spin.stopSpinner()
	if err != nil {
		return explain(err)
	}

	if optimizeJSON {
		var data []byte
		data, err = json.MarshalIndent(result, "", "  ")
		if err != nil {
			err = errors.Wrap(err, "failed to encode result")
			return err
		}
		fmt.Println(string(data))
	} else {
		printOptimization(result)
	}

	if optimizePersist {
		err = saveOptimization(ctx, a, jobDescription, result)
	}
	return err
}

// scoreChange describes a score relative to an earlier run.
func scoreChange(previous store.OptimizerRun, score int) (msg string) {
	delta := score - previous.Score
	switch {
	case delta > 0:
		msg = fmt.Sprintf("up %d from %d/100 on %s", delta, previous.Score, previous.CreatedAt.Format("2006-01-02"))
	case delta < 0:
		msg = fmt.Sprintf("down %d from %d/100 on %s", -delta, previous.Score, previous.CreatedAt.Format("2006-01-02"))
	default:
		msg = fmt.Sprintf("unchanged since %s", previous.CreatedAt.Format("2006-01-02"))
	}
	return msg
}

func saveOptimization(ctx context.Context, a app, jobDescription string, result llm.Optimization) (err error) {
	var b backend
	b, err = openBackend(ctx, a)
	if err != nil {
		return err
	}
	defer b.Close()

	var userID uuid.UUID
	userID, _, err = b.currentUser(ctx)
	if err != nil {
		return err
	}

	runs := store.NewOptimizerRuns(b.db)

	previous, prevErr := runs.LatestForJob(ctx, userID, jobDescription)
	switch {
	case prevErr == nil:
		fmt.Fprintf(os.Stderr, "\nScore %s\n", scoreChange(previous, result.Score))
	case !errors.Is(prevErr, store.ErrNotFound):
		a.logger.Warn().Err(prevErr).Msg("Previous score unavailable")
	}

	var data []byte
	data, err = json.Marshal(result)
	if err != nil {
		err = errors.Wrap(err, "failed to encode result")
		return err
	}

	_, err = runs.Save(ctx, store.OptimizerRun{
		UserID:         userID,
		JobDescription: jobDescription,
		Score:          result.Score,
		Result:         data,
	})
	return err
}
