package vpn

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/yllada/wireguard-gui/common"
)

// CommandProber runs an external status command with the interface name
// appended. Exit 0 means the link is up, any other exit means down.
type CommandProber struct {
	argv []string
}

// NewCommandProber returns a prober for argv, e.g. ["ip", "-br", "link", "show", "dev"].
func NewCommandProber(argv []string) (*CommandProber, error) {
	if len(argv) == 0 {
		return nil, errors.New("status command is empty")
	}
	return &CommandProber{argv: append([]string(nil), argv...)}, nil
}

// LinkUp reports whether the interface named after profile exists.
func (p *CommandProber) LinkUp(ctx context.Context, profile string) (bool, error) {
	args := append(append([]string(nil), p.argv[1:]...), profile)
	err := exec.CommandContext(ctx, p.argv[0], args...).Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("status command: %w", err)
}

// NetifProber inspects the host's interfaces directly instead of running a tool.
type NetifProber struct {
	interfaces func(ctx context.Context) (psnet.InterfaceStatList, error)
}

// NewNetifProber returns a prober backed by the OS interface table.
func NewNetifProber() *NetifProber {
	return &NetifProber{interfaces: psnet.InterfacesWithContext}
}

// LinkUp reports whether an interface named profile exists.
func (p *NetifProber) LinkUp(ctx context.Context, profile string) (bool, error) {
	list, err := p.interfaces(ctx)
	if err != nil {
		return false, fmt.Errorf("list interfaces: %w", err)
	}
	for _, iface := range list {
		if iface.Name == profile {
			return true, nil
		}
	}
	return false, nil
}

// NewLinkProber selects a prober by mode (see common.LinkProbeCommand and
// common.LinkProbeNetif).
func NewLinkProber(mode string, statusArgv []string) (common.LinkProber, error) {
	if mode == common.LinkProbeNetif {
		return NewNetifProber(), nil
	}
	return NewCommandProber(statusArgv)
}
