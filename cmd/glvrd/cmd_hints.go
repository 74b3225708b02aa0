package main

import (
	"fmt"
	"log/slog"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JohnPlummer/glvrd-client/glvrd"
)

func init() {
	rootCmd.AddCommand(hintsCmd)
}

var hintsCmd = &cobra.Command{
	Use:   "hints <id>...",
	Short: "Show hint descriptions by id",
	Long: `Show hint descriptions by id.

Every run opens a new session. Ids the service scopes to an earlier
session may come back empty.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		if _, err := client.GetStatus(cmd.Context()); err != nil {
			slog.Warn("could not fetch service limits", "error", err)
		}

		if v := glvrd.ValidateHintIDs(args, client.Limits()); !v.Valid {
			slog.Warn("hint ids look invalid", "issues", v.Issues)
		}

		hints, err := client.GetHints(cmd.Context(), args)
		if err != nil {
			return fmt.Errorf("hints: %w", err)
		}

		ids := make([]string, 0, len(hints))
		for id := range hints {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPENALTY\tDESCRIPTION")
		for _, id := range ids {
			h := hints[id]
			fmt.Fprintf(w, "%s\t%s\t%g\t%s\n", id, h.Name, h.Penalty, h.Description)
		}
		return w.Flush()
	},
}
