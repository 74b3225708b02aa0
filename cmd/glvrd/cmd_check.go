package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JohnPlummer/glvrd-client/glvrd"
	"github.com/JohnPlummer/glvrd-client/glvrd/suggest"
)

var (
	flagNoHints     bool
	flagJSON        bool
	flagSuggest     bool
	flagConcurrency int
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&flagNoHints, "no-hints", false, "do not fetch hint descriptions")
	checkCmd.Flags().BoolVar(&flagJSON, "json", false, "print results as JSON")
	checkCmd.Flags().BoolVar(&flagSuggest, "suggest", false, "ask OpenAI for rewrites of flagged fragments (needs OPENAI_API_KEY)")
	checkCmd.Flags().IntVar(&flagConcurrency, "concurrency", 4, "files proofread in parallel")
}

var checkCmd = &cobra.Command{
	Use:   "check [file...|-]",
	Short: "Proofread files or stdin and print the score",
	RunE:  runCheck,
}

// input is one text to proofread
type input struct {
	Name string
	Text string
}

// report is the outcome for one input
type report struct {
	Name        string                 `json:"name"`
	Result      *glvrd.ProofreadResult `json:"result"`
	Suggestions []suggest.Suggestion   `json:"suggestions,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	if flagConcurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1, got %d", flagConcurrency)
	}

	inputs, err := readInputs(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	var suggester *suggest.Suggester
	if flagSuggest {
		suggester, err = suggest.New(suggest.Config{APIKey: os.Getenv("OPENAI_API_KEY")})
		if err != nil {
			return fmt.Errorf("suggest: %w", err)
		}
	}

	ctx := cmd.Context()
	if _, err := client.GetStatus(ctx); err != nil {
		slog.Warn("could not fetch service limits", "error", err)
	}
	for _, in := range inputs {
		if v := glvrd.ValidateText(in.Text, client.Limits()); !v.Valid {
			slog.Warn("text may be rejected", "name", in.Name, "issues", v.Issues)
		}
	}

	var opts []glvrd.ProofreadOption
	if flagNoHints {
		opts = append(opts, glvrd.SkipDecoration())
	}

	reports := make([]report, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(flagConcurrency)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			res, err := client.Proofread(gctx, in.Text, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", in.Name, err)
			}
			if res.Score == nil {
				score := glvrd.ComputeScore(res)
				res.Score = &score
			}

			reports[i] = report{Name: in.Name, Result: res}
			if suggester != nil {
				suggestions, err := suggester.Suggest(gctx, res)
				if err != nil {
					return fmt.Errorf("%s: %w", in.Name, err)
				}
				reports[i].Suggestions = suggestions
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	total := totalScore(reports)

	out := cmd.OutOrStdout()
	if flagJSON {
		return renderJSON(out, reports, total)
	}
	return renderText(out, reports, total)
}

// readInputs reads the named files, or stdin when args is empty or "-"
func readInputs(stdin io.Reader, args []string) ([]input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}

	inputs := make([]input, 0, len(args))
	for _, name := range args {
		var data []byte
		var err error
		if name == "-" {
			data, err = io.ReadAll(stdin)
			name = "<stdin>"
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		inputs = append(inputs, input{Name: name, Text: string(data)})
	}
	return inputs, nil
}

// totalScore scores all reports together the way Proofread scores each one:
// from the fragments alone, before hints and their penalties are attached.
func totalScore(reports []report) glvrd.Score {
	results := make([]*glvrd.ProofreadResult, 0, len(reports))
	for _, r := range reports {
		results = append(results, undecorated(r.Result))
	}
	return glvrd.ComputeScore(results...)
}

// undecorated copies res with every fragment's hint removed
func undecorated(res *glvrd.ProofreadResult) *glvrd.ProofreadResult {
	if res == nil {
		return nil
	}
	cp := *res
	cp.Fragments = make([]*glvrd.Fragment, 0, len(res.Fragments))
	for _, f := range res.Fragments {
		if f == nil {
			continue
		}
		fc := *f
		fc.Hint = nil
		cp.Fragments = append(cp.Fragments, &fc)
	}
	return &cp
}
