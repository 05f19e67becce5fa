package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"workbench/internal/config"
	"workbench/internal/dnd"
	"workbench/internal/dock"
	"workbench/internal/layout"
	"workbench/internal/logger"
	"workbench/internal/persist"
	"workbench/internal/snapshot"
	"workbench/internal/store"
	"workbench/internal/trace"
	"workbench/internal/ui"
	"workbench/internal/ui/textutil"
)

const autosaveInterval = 2 * time.Second

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	workspace  string
	debug      bool
}

// load reads configuration and applies flag overrides.
func (g *globals) load() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("error loading config: %w", err)
	}
	if g.workspace != "" {
		cfg.UI.Workspace = g.workspace
	}
	if g.debug {
		cfg.Log.Debug = true
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "workbench",
		Short: "Docking workbench for the terminal",
		Long: `Workbench arranges panels in a grid of tabbed groups. Tabs and groups
can be dragged with the mouse to split, merge, float or pop out, and the
layout of each workspace is saved between runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), g)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVarP(&g.workspace, "workspace", "w", "", "workspace id")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging")

	root.AddCommand(newLayoutCmd(g), newWorkspacesCmd(g), newConfigCmd(g))
	return root
}

// engineOptions turns the dock settings into engine options. The caller
// fills in the bridge and window host.
func engineOptions(cfg config.Config) dock.Options {
	policy := dock.Redock
	if cfg.Dock.PopoutClose == "discard" {
		policy = dock.Discard
	}
	return dock.Options{
		SplitRatio:        cfg.Dock.SplitRatio,
		Thresholds:        dnd.Thresholds{Fraction: cfg.Dock.EdgeFraction, MinPx: cfg.Dock.EdgeMinPx},
		HeaderHeight:      cfg.Dock.HeaderHeight,
		DefaultRenderer:   layout.Renderer(cfg.Dock.DefaultRenderer),
		PopoutClosePolicy: policy,
		TabWidth:          func(title string) int { return textutil.Width(title) + 2 },
	}
}

func runTUI(ctx context.Context, g *globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	logger.SetDebug(cfg.Log.Debug)
	if err := logger.Init(cfg.Log.Path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer logger.Close()
	log := logger.With("cli")

	rec := trace.NewRecorder(0)
	tp, err := trace.NewProvider(ctx, trace.Options{
		Endpoint:    cfg.OTel.Endpoint,
		ServiceName: cfg.OTel.ServiceName,
		Recorder:    rec,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	ws := cfg.UI.Workspace
	if _, err := st.EnsureWorkspace(ctx, ws); err != nil {
		return err
	}

	keys := ui.NewKeybindRegistry()
	screens := ui.NewScreenHost()
	b := ui.NewTeaBridge()
	b.Register(ui.ComponentText, ui.NewTextContent)
	b.Register(ui.ComponentInspector, ui.NewInspectorContent)
	b.Register(ui.ComponentTrace, ui.NewTraceFactory(rec))
	b.Register(ui.ComponentWelcome, ui.NewWelcomeFactory(keys))

	opts := engineOptions(cfg)
	opts.Bridge = b
	opts.Logger = logger.With("dock")
	opts.Tracer = tp.Tracer("workbench/dock")
	opts.WindowHost = screens
	opts.Liveness = screens.Live
	engine := dock.New(opts)
	defer engine.Dispose()

	saver := persist.New(engine, st, ws, logger.With("persist"))
	restored, err := saver.Restore(ctx)
	switch {
	case err != nil && restored:
		log.Warn("layout restored with errors", "workspace", ws, "error", err)
	case err != nil:
		log.Error("restoring layout failed, starting empty", "workspace", ws, "error", err)
	}

	var interval time.Duration
	if cfg.UI.Autosave {
		interval = autosaveInterval
	}
	app := ui.NewAppModel(ui.Options{
		Engine:           engine,
		Bridge:           b,
		Screens:          screens,
		Saver:            saver,
		Snapshots:        snapshot.NewStore(cfg.Snapshot.Dir),
		Recorder:         rec,
		Logger:           logger.With("ui"),
		Workspace:        ws,
		AutosaveInterval: interval,
		Keys:             keys,
	})

	p := tea.NewProgram(app.AsTeaModel(), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, runErr := p.Run()
	if err := app.Shutdown(context.Background()); err != nil {
		log.Error("saving layout on exit failed", "workspace", ws, "error", err)
		if runErr == nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("error running app: %w", runErr)
	}
	return nil
}
