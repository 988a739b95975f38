package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionsCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage backend sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sessions on the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			sessions, err := client.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range sessions {
				title := s.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04"), title)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			return client.DeleteSession(cmd.Context(), args[0])
		},
	})

	return cmd
}
