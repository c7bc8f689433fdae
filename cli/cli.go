// Package cli provides the command-line interface for WireGuard GUI.
// Every profile and connection operation is exposed as a cobra command
// that drives the same vpn.Manager the tray uses.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yllada/wireguard-gui/common"
	"github.com/yllada/wireguard-gui/config"
	"github.com/yllada/wireguard-gui/history"
	"github.com/yllada/wireguard-gui/vpn"
)

// BuildInfo is injected by main from ldflags.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// App holds the state shared by all commands of one invocation.
type App struct {
	build BuildInfo

	configDir string
	verbose   bool
	jsonMode  bool

	stdin  io.Reader
	stdout io.Writer

	cfg     *config.Config
	journal *history.Journal
	prober  common.LinkProber
	manager *vpn.Manager
}

// skipSetup marks commands that run without config, logging or scripts.
const skipSetup = "skip-setup"

// Execute runs the command line and releases what the command opened.
func Execute(ctx context.Context, build BuildInfo) error {
	root, a := newRootCommand(build)
	defer a.close()
	return root.ExecuteContext(ctx)
}

// newRootCommand builds the command tree.
func newRootCommand(build BuildInfo) (*cobra.Command, *App) {
	a := &App{build: build, stdin: os.Stdin, stdout: os.Stdout}

	root := &cobra.Command{
		Use:           "wireguard-gui",
		Short:         "Manage and switch WireGuard profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stdin = cmd.InOrStdin()
			a.stdout = cmd.OutOrStdout()
			if cmd.Annotations[skipSetup] == "true" {
				return nil
			}
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configDir, "config-dir", "", "configuration directory (default ~/.config/wireguard-gui)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&a.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		a.stateCommand(),
		a.listCommand(),
		a.createCommand(),
		a.updateCommand(),
		a.deleteCommand(),
		a.connectCommand(),
		a.disconnectCommand(),
		a.importCommand(),
		a.exportCommand(),
		a.historyCommand(),
		a.watchCommand(),
		a.trayCommand(),
		a.versionCommand(),
	)
	return root, a
}

// setup loads the configuration, starts logging and installs the helper
// scripts. It does not touch the connection state.
func (a *App) setup() error {
	if a.configDir == "" {
		dir, err := common.DefaultConfigDir()
		if err != nil {
			return err
		}
		a.configDir = dir
	}
	if err := common.EnsureDir(a.configDir); err != nil {
		return common.NewIoError("mkdir", a.configDir, err)
	}

	cfg, err := config.Load(a.configDir)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := common.ParseLogLevel(cfg.LogLevel)
	if a.verbose {
		level = common.LevelDebug
	}
	if err := common.InitLogger(common.LogConfig{
		Level: level,
		Dir:   filepath.Join(a.configDir, common.LogsDirName),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}

	if err := vpn.InstallScripts(a.configDir); err != nil {
		return common.WrapError(err, "failed to install helper scripts")
	}
	return nil
}

// open wires the manager and reconciles the persisted state. indicator may
// be nil.
func (a *App) open(ctx context.Context, indicator common.Indicator) (*vpn.Manager, error) {
	if a.manager != nil {
		return a.manager, nil
	}

	toggleArgs, err := a.cfg.ToggleArgs()
	if err != nil {
		return nil, err
	}
	executor, err := vpn.NewScriptExecutor(toggleArgs)
	if err != nil {
		return nil, err
	}

	statusArgs, err := a.cfg.StatusArgs()
	if err != nil {
		return nil, err
	}
	prober, err := vpn.NewLinkProber(a.cfg.LinkProbe, statusArgs)
	if err != nil {
		return nil, err
	}
	a.prober = prober

	resolver := vpn.NewHTTPResolver(a.cfg.PublicIPURL, a.cfg.PublicIPTimeout)

	var recorder vpn.Recorder
	if a.cfg.History {
		if journal, err := a.openJournal(ctx); err != nil {
			common.LogWarn("History disabled: %v", err)
		} else {
			recorder = journal
		}
	}

	marker := vpn.NewMarker(filepath.Join(a.configDir, common.MarkerFileName))
	reconciler := &vpn.Reconciler{
		Marker:   marker,
		Prober:   prober,
		Resolver: resolver,
		Recorder: recorder,
	}
	initial := reconciler.Reconcile(ctx)
	common.LogDebug("Initial state: %s %q", initial.Status, initial.ActiveProfile)

	a.manager = vpn.NewManager(vpn.Options{
		Profiles:    vpn.NewProfileStore(filepath.Join(a.configDir, common.ProfilesDirName)),
		Marker:      marker,
		Executor:    executor,
		Resolver:    resolver,
		Indicator:   indicator,
		Recorder:    recorder,
		SettleDelay: a.cfg.SettleDelay,
	}, initial)
	return a.manager, nil
}

func (a *App) openJournal(ctx context.Context) (*history.Journal, error) {
	if a.journal != nil {
		return a.journal, nil
	}
	journal, err := history.Open(ctx, filepath.Join(a.configDir, common.HistoryFileName))
	if err != nil {
		return nil, err
	}
	a.journal = journal
	return journal, nil
}

// store returns the profile store without reconciling. Profile CRUD that
// never touches the connection uses it.
func (a *App) store() *vpn.ProfileStore {
	return vpn.NewProfileStore(filepath.Join(a.configDir, common.ProfilesDirName))
}

func (a *App) close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			common.LogWarn("Closing history: %v", err)
		}
		a.journal = nil
	}
	common.CloseLogger()
}
