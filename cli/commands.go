package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yllada/wireguard-gui/common"
	"github.com/yllada/wireguard-gui/tray"
	"github.com/yllada/wireguard-gui/vpn"
)

func (a *App) stateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the connection state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			return a.printer().state(m.State())
		},
	}
}

func (a *App) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := a.store().List()
			if err != nil {
				return err
			}
			active := ""
			if name, ok, _ := vpn.NewMarker(a.markerPath()).Read(); ok {
				active = name
			}
			return a.printer().profiles(profiles, active)
		},
	}
}

func (a *App) createCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME FILE|-",
		Short: "Create a profile from a file or stdin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(args[1], a.stdin)
			if err != nil {
				return err
			}
			if err := a.store().Create(args[0], content); err != nil {
				return err
			}
			return a.printer().success(fmt.Sprintf("Created profile %s", args[0]))
		},
	}
}

func (a *App) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update NAME FILE|-",
		Short: "Replace a profile's content, reconnecting it when active",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(args[1], a.stdin)
			if err != nil {
				return err
			}
			m, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := m.UpdateProfile(cmd.Context(), args[0], content); err != nil {
				return err
			}
			return a.printer().success(fmt.Sprintf("Updated profile %s", args[0]))
		},
	}
}

func (a *App) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a profile, disconnecting it first when active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := m.DeleteProfile(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printer().success(fmt.Sprintf("Deleted profile %s", args[0]))
		},
	}
}

func (a *App) connectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connect NAME",
		Short: "Make NAME the active profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := m.Connect(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printer().state(m.State())
		},
	}
}

func (a *App) disconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Tear down the active profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := m.Disconnect(cmd.Context()); err != nil {
				return err
			}
			return a.printer().state(m.State())
		},
	}
}

func (a *App) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Import profile files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := a.store().Import(args)
			if err := a.printer().importResult(result); err != nil {
				return err
			}
			if n := len(result.Failed); n > 0 {
				return fmt.Errorf("%d of %d files failed to import", n, len(args))
			}
			return nil
		},
	}
}

func (a *App) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export DIR",
		Short: "Copy every profile file into DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.store().Export(args[0])
			if err != nil {
				return err
			}
			if err := a.printer().exportResult(result); err != nil {
				return err
			}
			if n := len(result.Failed); n > 0 {
				return fmt.Errorf("%d profiles failed to export", n)
			}
			return nil
		},
	}
}

func (a *App) historyCommand() *cobra.Command {
	var limit int
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent connection transitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.History {
				return fmt.Errorf("history is disabled in %s", common.ConfigFileName)
			}
			journal, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			if olderThan > 0 {
				n, err := journal.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				common.LogInfo("Pruned %d history entries", n)
			}
			entries, err := journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return a.printer().history(entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show (0 for all)")
	cmd.Flags().DurationVar(&olderThan, "prune", 0, "delete entries older than this before listing")
	return cmd
}

func (a *App) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print profile changes as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.printer()
			return a.store().Watch(cmd.Context(), func(ev vpn.ProfileEvent) {
				if err := p.event(ev); err != nil {
					common.LogWarn("Writing event: %v", err)
				}
			})
		},
	}
}

func (a *App) trayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tray",
		Short: "Run the system tray indicator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTray(cmd.Context())
		},
	}
}

func (a *App) runTray(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	notifier := tray.NotifierOrNop(a.cfg.Notifications)
	indicator := tray.NewIndicator(ctx, notifier, cancel)

	m, err := a.open(ctx, indicator)
	if err != nil {
		return err
	}
	indicator.Attach(m)

	health := vpn.NewHealthChecker(m, a.prober, vpn.HealthConfig{
		CheckInterval:    a.cfg.HealthInterval,
		FailureThreshold: vpn.DefaultHealthConfig().FailureThreshold,
	})
	health.SetOnHealthChange(onHealthChange(indicator, notifier))
	health.Start()
	defer health.Stop()

	go func() {
		err := m.Profiles().Watch(ctx, func(vpn.ProfileEvent) { indicator.Refresh() })
		if err != nil {
			common.LogWarn("Profile watcher stopped: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		indicator.Quit()
	}()

	common.LogInfo("Starting tray (active: %q)", m.State().ActiveProfile)
	indicator.Run()
	return nil
}

// linkHealthView is the part of the tray indicator that shows link health.
type linkHealthView interface {
	SetLinkHealth(healthy bool)
}

// onHealthChange flags a dead link in the tray and notifies once when the
// checker gives up on it. Recovery clears the flag.
func onHealthChange(view linkHealthView, notifier common.Notifier) func(profile string, oldState, newState vpn.HealthState) {
	return func(profile string, oldState, newState vpn.HealthState) {
		switch newState {
		case vpn.HealthUnhealthy:
			view.SetLinkHealth(false)
			tray.NotifyError(notifier, profile, fmt.Errorf("link is down"))
		case vpn.HealthHealthy:
			if oldState == vpn.HealthUnhealthy {
				view.SetLinkHealth(true)
			}
		}
	}
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printer().version(a.build)
		},
	}
}

func (a *App) markerPath() string {
	return filepath.Join(a.configDir, common.MarkerFileName)
}

// readContent reads a profile body from path, or from stdin when path is "-".
func readContent(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", common.NewIoError("read", path, err)
	}
	return string(data), nil
}
