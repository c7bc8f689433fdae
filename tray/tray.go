// Package tray provides the system tray indicator for WireGuard GUI.
// This file contains the indicator and its menu.
package tray

import (
	"context"
	"fmt"
	"sync"

	"fyne.io/systray"

	"github.com/yllada/wireguard-gui/common"
	"github.com/yllada/wireguard-gui/vpn"
)

// Controller is the part of vpn.Manager the tray drives.
type Controller interface {
	State() vpn.State
	ListProfiles() ([]*vpn.Profile, error)
	Connect(ctx context.Context, name string) error
	Disconnect(ctx context.Context) error
}

// Pre-rendered icons.
var (
	iconConnected    = mustRender(ConnectedIconConfig())
	iconDisconnected = mustRender(DisconnectedIconConfig())
)

func mustRender(cfg IconConfig) []byte {
	icon, err := RenderIcon(cfg)
	if err != nil {
		panic(err)
	}
	return icon
}

// Indicator manages the tray icon and menu. It implements
// common.Indicator so the manager can flip the icon after each
// successful transition. Updates that arrive before the tray is ready
// are applied once it is.
type Indicator struct {
	ctx      context.Context
	ctrl     Controller
	notifier common.Notifier
	onQuit   func()

	mu             sync.Mutex
	ready          bool
	active         string
	linkDown       bool
	statusItem     *systray.MenuItem
	ipItem         *systray.MenuItem
	disconnectItem *systray.MenuItem
	profilesMenu   *systray.MenuItem
	profileItems   map[string]*systray.MenuItem
}

// NewIndicator creates an indicator. The controller is set with Attach
// because the manager needs the indicator at construction time.
func NewIndicator(ctx context.Context, notifier common.Notifier, onQuit func()) *Indicator {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Indicator{
		ctx:          ctx,
		notifier:     notifier,
		onQuit:       onQuit,
		profileItems: make(map[string]*systray.MenuItem),
	}
}

// Attach sets the controller behind the menu actions.
func (t *Indicator) Attach(ctrl Controller) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctrl = ctrl
	t.active = ctrl.State().ActiveProfile
}

// Run starts the tray. It blocks until Quit.
func (t *Indicator) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray loop.
func (t *Indicator) Quit() {
	systray.Quit()
}

func (t *Indicator) onReady() {
	systray.SetTitle(common.AppName)

	t.mu.Lock()
	t.statusItem = systray.AddMenuItem(statusTitle("", false), "Current connection")
	t.statusItem.Disable()
	t.ipItem = systray.AddMenuItem(ipTitle(""), "Public IP address")
	t.ipItem.Disable()

	systray.AddSeparator()

	t.profilesMenu = systray.AddMenuItem("Connect to", "Switch the active profile")
	t.disconnectItem = systray.AddMenuItem("Disconnect", "Tear down the active profile")

	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Close "+common.AppName)
	t.ready = true
	t.mu.Unlock()

	go func() {
		for range t.disconnectItem.ClickedCh {
			t.disconnect()
		}
	}()
	go func() {
		<-quitItem.ClickedCh
		systray.Quit()
	}()

	t.Refresh()
	common.LogInfo("Tray indicator ready")
}

func (t *Indicator) onExit() {
	common.LogInfo("Tray indicator exiting")
	if t.onQuit != nil {
		t.onQuit()
	}
}

// SetConnected implements common.Indicator.
func (t *Indicator) SetConnected(profile string) {
	t.mu.Lock()
	t.active = profile
	t.linkDown = false
	t.mu.Unlock()
	t.render()
}

// SetDisconnected implements common.Indicator.
func (t *Indicator) SetDisconnected() {
	t.mu.Lock()
	t.active = ""
	t.linkDown = false
	t.mu.Unlock()
	t.render()
}

// SetLinkHealth flags the active link as down in the tooltip and status
// line. The connection state itself is left alone.
func (t *Indicator) SetLinkHealth(healthy bool) {
	t.mu.Lock()
	t.linkDown = !healthy
	t.mu.Unlock()
	t.render()
}

// Refresh syncs the profile submenu with the store. Items for removed
// profiles are hidden; menu items cannot be reordered once added.
func (t *Indicator) Refresh() {
	t.mu.Lock()
	if !t.ready || t.ctrl == nil {
		t.mu.Unlock()
		return
	}
	ctrl := t.ctrl
	t.mu.Unlock()

	profiles, err := ctrl.ListProfiles()
	if err != nil {
		common.LogWarn("Tray: listing profiles failed: %v", err)
		return
	}

	t.mu.Lock()
	seen := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		seen[p.Name] = true
		item, ok := t.profileItems[p.Name]
		if !ok {
			item = t.profilesMenu.AddSubMenuItemCheckbox(p.Name, "Connect to "+p.Name, false)
			t.profileItems[p.Name] = item
			go t.watchProfileItem(p.Name, item)
		}
		item.Show()
	}
	for name, item := range t.profileItems {
		if !seen[name] {
			item.Hide()
		}
	}
	t.mu.Unlock()

	t.render()
}

func (t *Indicator) watchProfileItem(name string, item *systray.MenuItem) {
	for range item.ClickedCh {
		t.connect(name)
	}
}

// view is what the menu shows.
type view struct {
	active   string
	ip       string
	linkDown bool
}

// viewLocked prefers the controller's state over the last indicator
// update, so a failed switch that left nothing active is not drawn as
// connected. Callers hold t.mu.
func (t *Indicator) viewLocked() view {
	v := view{active: t.active}
	if t.ctrl != nil {
		st := t.ctrl.State()
		v.active = st.ActiveProfile
		v.ip = st.PublicIP
	}
	v.linkDown = t.linkDown && v.active != ""
	return v
}

// render applies the current state to the icon and menu.
func (t *Indicator) render() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready {
		return
	}

	v := t.viewLocked()
	if v.active != "" {
		systray.SetIcon(iconConnected)
		t.disconnectItem.Enable()
	} else {
		systray.SetIcon(iconDisconnected)
		t.disconnectItem.Disable()
	}
	systray.SetTooltip(tooltip(v.active, v.linkDown))
	t.statusItem.SetTitle(statusTitle(v.active, v.linkDown))
	t.ipItem.SetTitle(ipTitle(v.ip))

	for name, item := range t.profileItems {
		if name == v.active {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

func (t *Indicator) controller() Controller {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ctrl
}

func (t *Indicator) connect(name string) {
	ctrl := t.controller()
	if ctrl == nil {
		return
	}
	if ctrl.State().ActiveProfile == name {
		common.LogDebug("Tray: %s is already active", name)
		t.render()
		return
	}
	if err := ctrl.Connect(t.ctx, name); err != nil {
		common.LogError("Tray: connect to %s failed: %v", name, err)
		NotifyError(t.notifier, name, err)
		t.render()
		return
	}
	NotifyConnected(t.notifier, name)
	t.render()
}

func (t *Indicator) disconnect() {
	ctrl := t.controller()
	if ctrl == nil {
		return
	}
	name := ctrl.State().ActiveProfile
	if name == "" {
		return
	}
	if err := ctrl.Disconnect(t.ctx); err != nil {
		common.LogError("Tray: disconnect from %s failed: %v", name, err)
		NotifyError(t.notifier, name, err)
		return
	}
	NotifyDisconnected(t.notifier, name)
	t.render()
}

func statusTitle(active string, linkDown bool) string {
	switch {
	case active == "":
		return "○  Not Connected"
	case linkDown:
		return fmt.Sprintf("●  Connected: %s (link down)", active)
	}
	return fmt.Sprintf("●  Connected: %s", active)
}

func ipTitle(ip string) string {
	if ip == "" {
		return "    IP: unknown"
	}
	return "    IP: " + ip
}

func tooltip(active string, linkDown bool) string {
	switch {
	case active == "":
		return common.AppName + " - Disconnected"
	case linkDown:
		return fmt.Sprintf("%s - %s link is down", common.AppName, active)
	}
	return fmt.Sprintf("%s - Connected to %s", common.AppName, active)
}
