package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kvalencee/alfaia/internal/analysis/pipeline"
	"github.com/kvalencee/alfaia/internal/infrastructure/cache"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

// newAnalyzeCmd creates the one-shot analysis command.  The text comes
// from the arguments or, when absent, from stdin.
func newAnalyzeCmd(opts *RootOptions) *cobra.Command {
	var learnerID string

	cmd := &cobra.Command{
		Use:   "analyze [texto]",
		Short: "Analiza un texto en español y muestra los errores detectados",
		Example: `  alfaia analyze "Yo tiene un libro."
  echo "Mi casa es bonito." | alfaia analyze
  alfaia analyze --json "hola como estas"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = string(raw)
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, true)
			if err != nil {
				return err
			}

			c, err := cache.NewMemoryCache(cfg.Analysis.CacheCapacity)
			if err != nil {
				return err
			}
			defer c.Close()

			p := pipeline.New(cfg.Analysis,
				pipeline.WithCache(c),
				pipeline.WithLogger(log),
			)

			result, err := p.Analyze(cmd.Context(), text, learnerID)
			if err != nil {
				return err
			}

			if opts.JSONOutput {
				return printJSON(cmd, result)
			}
			printReport(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&learnerID, "learner", "", "learner id to attribute the submission to")

	return cmd
}

// printReport renders a human-readable summary of the analysis.
func printReport(cmd *cobra.Command, r *analysis.AnalysisResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Puntuación: %.1f / 100\n", r.Score)
	fmt.Fprintf(out, "Fluidez: %.2f  Sentimiento: %s  Dificultad: %s\n",
		r.Signals.Fluency, r.Signals.Sentiment, r.Signals.Difficulty)
	fmt.Fprintf(out, "Palabras: %d  Oraciones: %d\n", r.Stats.WordCount, r.Stats.SentenceCount)

	if len(r.Issues) == 0 {
		fmt.Fprintln(out, "\nSin errores detectados.")
	} else {
		fmt.Fprintf(out, "\nErrores detectados (%d):\n", len(r.Issues))
		for _, issue := range r.Issues {
			fragment := fragmentFor(r.Text, issue.Span)
			fmt.Fprintf(out, "  [%s] %s: %s\n", issue.RuleID, fragment, issue.Message)
			if len(issue.Suggestions) > 0 {
				fmt.Fprintf(out, "      Sugerencia: %s\n", strings.Join(issue.Suggestions, ", "))
			}
		}
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(out, "Aviso (%s): %s\n", w.Analyzer, w.Message)
	}
}

// fragmentFor extracts the flagged text, bounds-checked against the
// normalized text the spans index into.
func fragmentFor(text string, span analysis.Span) string {
	if span.Start < 0 || span.End > len(text) || span.Start >= span.End {
		return "?"
	}
	return fmt.Sprintf("%q", text[span.Start:span.End])
}
