package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newWorkspacesCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspaces",
		Short: "List stored workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore(g)
			if err != nil {
				return err
			}
			defer st.Close()
			wss, err := st.Workspaces(cmd.Context())
			if err != nil {
				return err
			}
			if len(wss) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no workspaces")
				return nil
			}
			t := table.New().Border(lipgloss.NormalBorder()).Headers("ID", "NAME", "UPDATED")
			for _, ws := range wss {
				t.Row(ws.ID, ws.Name, ws.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a workspace and its saved state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore(g)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.DeleteWorkspace(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	})
	return cmd
}
