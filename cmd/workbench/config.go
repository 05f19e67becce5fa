package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"workbench/internal/config"
)

func newConfigCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			path := g.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "workspace        %s\n", cfg.UI.Workspace)
			fmt.Fprintf(out, "store            %s\n", cfg.Store.Path)
			fmt.Fprintf(out, "snapshots        %s\n", cfg.Snapshot.Dir)
			fmt.Fprintf(out, "log              %s (debug %t)\n", cfg.Log.Path, cfg.Log.Debug)
			fmt.Fprintf(out, "split ratio      %v\n", cfg.Dock.SplitRatio)
			fmt.Fprintf(out, "edge             %v, min %d\n", cfg.Dock.EdgeFraction, cfg.Dock.EdgeMinPx)
			fmt.Fprintf(out, "renderer         %s\n", cfg.Dock.DefaultRenderer)
			fmt.Fprintf(out, "popout close     %s\n", cfg.Dock.PopoutClose)
			if cfg.OTel.Endpoint != "" {
				fmt.Fprintf(out, "otel             %s (%s)\n", cfg.OTel.Endpoint, cfg.OTel.ServiceName)
			}
			return nil
		},
	})
	return cmd
}
