package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	glvrdclient "github.com/JohnPlummer/glvrd-client"
)

var flagStatusPost bool

func init() {
	rootCmd.AddCommand(statusCmd, sessionCmd, versionCmd)
	statusCmd.Flags().BoolVar(&flagStatusPost, "post", false, "refresh status within a session")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service status and limits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		if flagStatusPost {
			_, err = client.PostStatus(cmd.Context())
		} else {
			_, err = client.GetStatus(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}

		limits := client.Limits()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "STATUS\tok\n")
		fmt.Fprintf(w, "MAX TEXT LENGTH\t%d\n", limits.MaxTextLength)
		fmt.Fprintf(w, "MAX HINTS COUNT\t%d\n", limits.MaxHintsCount)
		return w.Flush()
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Create a session and print its token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		if _, err := client.CheckSession(cmd.Context()); err != nil {
			return fmt.Errorf("session: %w", err)
		}

		s := client.Session()
		fmt.Fprintf(cmd.OutOrStdout(), "%s\texpires %s\n", s.Token, s.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := glvrdclient.GetVersion()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", info.Name, info.Version)
		return nil
	},
}
