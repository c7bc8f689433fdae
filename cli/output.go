package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/yllada/wireguard-gui/history"
	"github.com/yllada/wireguard-gui/vpn"
)

var (
	connectedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	disconnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	failedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	headerStyle       = lipgloss.NewStyle().Bold(true)
)

// printer renders command results as JSON or as text for people,
// styled only when writing to a terminal.
type printer struct {
	out      io.Writer
	jsonMode bool
	styled   bool
}

func (a *App) printer() *printer {
	return &printer{
		out:      a.stdout,
		jsonMode: a.jsonMode,
		styled:   !a.jsonMode && isTerminal(a.stdout),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *printer) json(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(p.out, string(data))
	return err
}

func (p *printer) success(message string) error {
	if p.jsonMode {
		return p.json(map[string]interface{}{"success": true, "message": message})
	}
	_, err := fmt.Fprintln(p.out, message)
	return err
}

func (p *printer) state(st vpn.State) error {
	if p.jsonMode {
		return p.json(st)
	}

	ip := st.PublicIP
	if ip == "" {
		ip = "unknown"
	}
	if st.Status == vpn.StatusConnected {
		fmt.Fprintf(p.out, "%s %s\n", p.render(connectedStyle, "● Connected:"), st.ActiveProfile)
	} else {
		fmt.Fprintln(p.out, p.render(disconnectedStyle, "○ Disconnected"))
	}
	_, err := fmt.Fprintf(p.out, "  Public IP: %s\n", ip)
	return err
}

type profileRow struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Size   int    `json:"size"`
}

func (p *printer) profiles(profiles []*vpn.Profile, active string) error {
	rows := make([]profileRow, 0, len(profiles))
	for _, prof := range profiles {
		rows = append(rows, profileRow{Name: prof.Name, Active: prof.Name == active, Size: len(prof.Content)})
	}
	if p.jsonMode {
		return p.json(rows)
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(p.out, "No profiles configured. Add one with: wireguard-gui import FILE.conf")
		return err
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, p.render(headerStyle, "NAME")+"\t"+p.render(headerStyle, "STATUS")+"\t"+p.render(headerStyle, "SIZE"))
	for _, r := range rows {
		status := p.render(disconnectedStyle, "-")
		if r.Active {
			status = p.render(connectedStyle, "active")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", r.Name, status, r.Size)
	}
	return w.Flush()
}

func (p *printer) importResult(r *vpn.ImportResult) error {
	if p.jsonMode {
		return p.json(r)
	}
	for _, name := range r.Success {
		fmt.Fprintf(p.out, "%s %s\n", p.render(connectedStyle, "✓"), name)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(p.out, "%s %s: %s\n", p.render(failedStyle, "✗"), f.FileName, f.Error)
	}
	_, err := fmt.Fprintf(p.out, "Imported %d, failed %d\n", len(r.Success), len(r.Failed))
	return err
}

func (p *printer) exportResult(r *vpn.ExportResult) error {
	if p.jsonMode {
		return p.json(r)
	}
	for _, name := range r.Success {
		fmt.Fprintf(p.out, "%s %s\n", p.render(connectedStyle, "✓"), name)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(p.out, "%s %s: %s\n", p.render(failedStyle, "✗"), f.ProfileName, f.Error)
	}
	_, err := fmt.Fprintf(p.out, "Exported %d, failed %d\n", len(r.Success), len(r.Failed))
	return err
}

func (p *printer) history(entries []history.Entry) error {
	if p.jsonMode {
		if entries == nil {
			entries = []history.Entry{}
		}
		return p.json(entries)
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(p.out, "No transitions recorded.")
		return err
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tKIND\tPROFILE\tFROM\tPUBLIC IP\tRESULT")
	for _, e := range entries {
		result := p.render(connectedStyle, "ok")
		if !e.OK() {
			result = p.render(failedStyle, e.Error)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Time.Local().Format(time.DateTime), e.Kind, dash(e.Profile), dash(e.From), dash(e.PublicIP), result)
	}
	return w.Flush()
}

func (p *printer) event(ev vpn.ProfileEvent) error {
	if p.jsonMode {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.out, string(data))
		return err
	}
	_, err := fmt.Fprintf(p.out, "%s %s\n", ev.Op, ev.Name)
	return err
}

func (p *printer) version(b BuildInfo) error {
	if p.jsonMode {
		return p.json(b)
	}
	fmt.Fprintf(p.out, "WireGuard GUI v%s\n", b.Version)
	if b.Commit != "" && b.Commit != "unknown" {
		fmt.Fprintf(p.out, "  Build:  %s\n", b.Date)
		fmt.Fprintf(p.out, "  Commit: %s\n", b.Commit)
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
