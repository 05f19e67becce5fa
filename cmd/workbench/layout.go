package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"workbench/internal/dock"
	"workbench/internal/errors"
	"workbench/internal/layout"
	"workbench/internal/snapshot"
	"workbench/internal/store"
)

func newLayoutCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Validate, render and move saved layouts",
	}
	cmd.AddCommand(
		newLayoutValidateCmd(),
		newLayoutRenderCmd(g),
		newLayoutExportCmd(g),
		newLayoutImportCmd(g),
		newLayoutListCmd(g),
	)
	return cmd
}

func newLayoutValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that a file is a valid layout document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := snapshot.ReadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d groups, %d panels)\n", args[0], len(doc.Groups()), len(doc.Panels))
			return nil
		},
	}
}

func newLayoutRenderCmd(g *globals) *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Print the rectangle of every group in a layout",
		Long: `Loads the layout into a headless engine and prints where each group
lands. Without --width and --height the document's own size is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			doc, err := snapshot.ReadFile(args[0])
			if err != nil {
				return err
			}
			e := dock.New(engineOptions(cfg))
			defer e.Dispose()
			if width > 0 && height > 0 {
				e.Layout(width, height)
			}
			if err := e.FromJSON(doc); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderGroups(e))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "layout width in cells")
	cmd.Flags().IntVar(&height, "height", 0, "layout height in cells")
	return cmd
}

func renderGroups(e *dock.Engine) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("GROUP", "WHERE", "RECT", "ACTIVE", "PANELS")
	for _, grp := range e.Groups() {
		r := grp.Rect()
		where := grp.Location().String()
		if w := grp.Window(); w != "" {
			where += " " + w
		}
		active := grp.ActivePanelID()
		if grp.IsActive() {
			active += " *"
		}
		t.Row(grp.ID(), where, fmt.Sprintf("%dx%d@%d,%d", r.Width, r.Height, r.X, r.Y), active, strings.Join(grp.PanelIDs(), ","))
	}
	return t.Render()
}

// openStore opens the configured store and makes sure the workspace exists.
func openStore(g *globals) (*store.Store, string, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, "", err
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, "", err
	}
	return st, cfg.UI.Workspace, nil
}

func newLayoutExportCmd(g *globals) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a workspace's saved layout to a file",
		Long: `Writes the workspace layout to --output, or to the snapshot directory
under the workspace name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, ws, err := openStore(g)
			if err != nil {
				return err
			}
			defer st.Close()
			doc, err := st.LoadLayout(cmd.Context(), ws)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				cfg, err := g.load()
				if err != nil {
					return err
				}
				path, err = snapshot.NewStore(cfg.Snapshot.Dir).Save(ws, doc)
				if err != nil {
					return err
				}
			} else if err := snapshot.WriteFile(path, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", ws, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "file to write")
	return cmd
}

func newLayoutImportCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE|SNAPSHOT",
		Short: "Replace a workspace's saved layout",
		Long: `Reads a layout file, or a snapshot by name from the snapshot directory,
validates it and stores it as the workspace layout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readLayoutArg(g, args[0])
			if err != nil {
				return err
			}
			st, ws, err := openStore(g)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.SaveLayout(cmd.Context(), ws, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s into %s\n", args[0], ws)
			return nil
		},
	}
}

// readLayoutArg loads arg as a file path, falling back to a snapshot name.
func readLayoutArg(g *globals, arg string) (*layout.Layout, error) {
	if _, err := os.Stat(arg); err == nil || strings.ContainsRune(arg, filepath.Separator) {
		return snapshot.ReadFile(arg)
	}
	cfg, err := g.load()
	if err != nil {
		return nil, err
	}
	doc, err := snapshot.NewStore(cfg.Snapshot.Dir).Load(arg)
	if errors.Is(err, errors.KindNotFound) {
		return nil, fmt.Errorf("%s is neither a file nor a snapshot: %w", arg, err)
	}
	return doc, err
}

func newLayoutListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exported snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			infos, err := snapshot.NewStore(cfg.Snapshot.Dir).List()
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no snapshots")
				return nil
			}
			t := table.New().Border(lipgloss.NormalBorder()).Headers("NAME", "MODIFIED", "BYTES")
			for _, in := range infos {
				t.Row(in.Name, in.ModTime.Format("2006-01-02 15:04"), fmt.Sprint(in.Size))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}
