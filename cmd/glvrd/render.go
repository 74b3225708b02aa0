package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/JohnPlummer/glvrd-client/glvrd"
	"github.com/JohnPlummer/glvrd-client/glvrd/suggest"
)

func renderText(w io.Writer, reports []report, total glvrd.Score) error {
	for _, r := range reports {
		res := r.Result
		if _, err := fmt.Fprintf(w, "%s: %s/10, %d fragments\n", r.Name, scoreOf(res), len(res.Fragments)); err != nil {
			return err
		}

		byFragment := make(map[*glvrd.Fragment]suggest.Suggestion, len(r.Suggestions))
		for _, s := range r.Suggestions {
			byFragment[s.Fragment] = s
		}

		for i, f := range res.Fragments {
			line := fmt.Sprintf("  %d. %q [%d:%d]", i+1, res.FragmentText(f), f.Start, f.End)
			if f.Hint != nil {
				line += fmt.Sprintf(" %s: %s", f.Hint.Name, f.Hint.Description)
			} else {
				line += " " + f.HintID
			}
			fmt.Fprintln(w, line)

			if s, ok := byFragment[f]; ok {
				fmt.Fprintf(w, "     -> %q (%s)\n", s.Rewrite, s.Reason)
			}
		}
	}

	if len(reports) > 1 {
		if _, err := fmt.Fprintf(w, "total: %s/10\n", total); err != nil {
			return err
		}
	}
	return nil
}

func renderJSON(w io.Writer, reports []report, total glvrd.Score) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(struct {
		Reports []report    `json:"reports"`
		Score   glvrd.Score `json:"score"`
	}{Reports: reports, Score: total})
}

func scoreOf(res *glvrd.ProofreadResult) glvrd.Score {
	if res.Score != nil {
		return *res.Score
	}
	return glvrd.ComputeScore(res)
}
