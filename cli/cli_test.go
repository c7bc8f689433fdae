package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/yllada/wireguard-gui/history"
	"github.com/yllada/wireguard-gui/vpn"
)

// newTestConfigDir writes a config whose toggle and status commands always
// succeed, so every link looks up and every toggle works.
func newTestConfigDir(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"origin": "203.0.113.7"}`))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := strings.Join([]string{
		"toggle_command: 'true'",
		"link_probe: command",
		"status_command: 'true'",
		"public_ip_url: " + srv.URL,
		"public_ip_timeout: 2s",
		"settle_delay: 0s",
		"notifications: false",
		"history: true",
		"health_interval: 30s",
		"log_level: error",
	}, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	root, app := newRootCommand(BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"})
	defer app.close()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config-dir", dir}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, dir, stdin string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, stdin, args...)
	if err != nil {
		t.Fatalf("%v: error = %v\n%s", args, err, out)
	}
	return out
}

func TestProfileLifecycle(t *testing.T) {
	dir := newTestConfigDir(t)

	mustRun(t, dir, "[Interface]\nPrivateKey = x\n", "create", "office", "-")
	if _, err := run(t, dir, "again", "create", "office", "-"); err == nil {
		t.Error("creating a duplicate profile should fail")
	}
	if _, err := run(t, dir, "content", "create", "my vpn", "-"); err == nil {
		t.Error("creating an invalid name should fail")
	}

	var rows []profileRow
	if err := json.Unmarshal([]byte(mustRun(t, dir, "", "--json", "list")), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Name != "office" || rows[0].Active {
		t.Fatalf("list = %+v", rows)
	}

	out := mustRun(t, dir, "", "connect", "office")
	if !strings.Contains(out, "Connected: office") {
		t.Errorf("connect output = %q", out)
	}

	var st vpn.State
	if err := json.Unmarshal([]byte(mustRun(t, dir, "", "--json", "state")), &st); err != nil {
		t.Fatal(err)
	}
	if st.Status != vpn.StatusConnected || st.ActiveProfile != "office" || st.PublicIP != "203.0.113.7" {
		t.Errorf("state = %+v", st)
	}

	mustRun(t, dir, "[Interface]\nPrivateKey = y\n", "update", "office", "-")
	data, err := os.ReadFile(filepath.Join(dir, "profiles", "office.conf"))
	if err != nil || !strings.Contains(string(data), "PrivateKey = y") {
		t.Errorf("updated content = %q, %v", data, err)
	}

	out = mustRun(t, dir, "", "disconnect")
	if !strings.Contains(out, "Disconnected") {
		t.Errorf("disconnect output = %q", out)
	}

	mustRun(t, dir, "", "delete", "office")
	if _, err := os.Stat(filepath.Join(dir, "profiles", "office.conf")); !os.IsNotExist(err) {
		t.Errorf("profile file should be deleted, stat err = %v", err)
	}

	var entries []history.Entry
	if err := json.Unmarshal([]byte(mustRun(t, dir, "", "--json", "history", "--limit", "0")), &entries); err != nil {
		t.Fatal(err)
	}
	kinds := map[vpn.TransitionKind]int{}
	for _, e := range entries {
		kinds[e.Kind]++
	}
	if kinds[vpn.TransitionConnect] != 1 || kinds[vpn.TransitionDisconnect] != 1 || kinds[vpn.TransitionReconnect] != 1 {
		t.Errorf("history kinds = %v", kinds)
	}
}

func TestConnectUnknownProfile(t *testing.T) {
	dir := newTestConfigDir(t)

	_, err := run(t, dir, "", "connect", "ghost")
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("connect error = %v, want not found", err)
	}
}

func TestImportExport(t *testing.T) {
	dir := newTestConfigDir(t)
	src := t.TempDir()
	good := filepath.Join(src, "Home Net.conf")
	bad := filepath.Join(src, "tiny.conf")
	os.WriteFile(good, []byte("[Interface]\n"), 0600)
	os.WriteFile(bad, []byte("x"), 0600)

	out, err := run(t, dir, "", "--json", "import", good, bad)
	if err == nil {
		t.Error("import with failures should return an error")
	}
	var result vpn.ImportResult
	if jerr := json.Unmarshal([]byte(out[:strings.LastIndex(out, "}")+1]), &result); jerr != nil {
		t.Fatalf("decode %q: %v", out, jerr)
	}
	if len(result.Success) != 1 || result.Success[0] != "HomeNet" || len(result.Failed) != 1 {
		t.Errorf("import result = %+v", result)
	}

	dst := t.TempDir()
	mustRun(t, dir, "", "export", dst)
	if _, err := os.Stat(filepath.Join(dst, "HomeNet.conf")); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}

func TestVersion(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")

	out := mustRun(t, dir, "", "version")
	if !strings.Contains(out, "v1.2.3") || !strings.Contains(out, "abc123") {
		t.Errorf("version output = %q", out)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("version must not create the config directory")
	}
}

func TestReadContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.conf")
	os.WriteFile(path, []byte("from file"), 0600)

	tests := []struct {
		name    string
		path    string
		stdin   string
		want    string
		wantErr bool
	}{
		{name: "stdin", path: "-", stdin: "from stdin", want: "from stdin"},
		{name: "file", path: path, want: "from file"},
		{name: "missing", path: filepath.Join(t.TempDir(), "nope"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readContent(tt.path, strings.NewReader(tt.stdin))
			if (err != nil) != tt.wantErr {
				t.Fatalf("readContent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("readContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

type recordingHealthView struct {
	updates []bool
}

func (r *recordingHealthView) SetLinkHealth(healthy bool) { r.updates = append(r.updates, healthy) }

type recordingNotifier struct {
	titles []string
}

func (r *recordingNotifier) Notify(title, message string) error {
	r.titles = append(r.titles, title)
	return nil
}

func TestOnHealthChange(t *testing.T) {
	view := &recordingHealthView{}
	notes := &recordingNotifier{}
	handle := onHealthChange(view, notes)

	handle("office", vpn.HealthUnknown, vpn.HealthHealthy)
	handle("office", vpn.HealthHealthy, vpn.HealthDegraded)
	handle("office", vpn.HealthDegraded, vpn.HealthUnhealthy)
	handle("office", vpn.HealthUnhealthy, vpn.HealthHealthy)

	if want := []bool{false, true}; !reflect.DeepEqual(view.updates, want) {
		t.Errorf("link health updates = %v, want %v", view.updates, want)
	}
	if len(notes.titles) != 1 || notes.titles[0] != "Connection Error" {
		t.Errorf("notifications = %v, want one Connection Error", notes.titles)
	}
}
