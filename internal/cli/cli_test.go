package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/netdiag/pkg/errors"
)

const lab = `Name,Role,Interface,Network,VLAN,Network IP,Mask,Device IP,Default Gateway
PC1,Host,eth0,A,10,10.0.12.0,255.255.255.0,10.0.12.1,
PC2,Host,eth0,A,,,,10.0.12.2,10.0.12.254
R1,Router,ge0/0,A,,,,10.0.12.254,
R1,Router,ge0/1,B,trunk,,,,
`

// execute runs the root command with args, keeping the cache in a temp dir.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if os.Getenv("XDG_CACHE_HOME") == "" {
		t.Setenv("XDG_CACHE_HOME", t.TempDir())
	}

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "lab.csv", lab)
	output := filepath.Join(dir, "campus")

	if _, err := execute(t, "run", "-i", input, "-o", output, "--format", "dot,d2"); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"diagram.dot", "diagram.d2", "topology.yaml"} {
		if _, err := os.Stat(filepath.Join(output, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	doc, err := os.ReadFile(filepath.Join(output, "topology.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"id: campus", "vlan: 10", "vlan: trunk", "gateway: 10.0.12.254"} {
		if !strings.Contains(string(doc), want) {
			t.Errorf("topology.yaml missing %q:\n%s", want, doc)
		}
	}
}

func TestRunCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "lab.csv", lab)
	badRole := writeFile(t, dir, "bad.csv", "Name,Role\nFW1,Firewall\n")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing input", []string{"run", "-i", filepath.Join(dir, "nope.csv"), "-o", dir}, errors.ErrCodeInput},
		{"unknown format", []string{"run", "-i", input, "-o", dir, "--format", "gif"}, errors.ErrCodeInvalidFormat},
		{"unknown renderer", []string{"run", "-i", input, "-o", dir, "--renderer", "mermaid"}, errors.ErrCodeInvalidFormat},
		{"bad delimiter", []string{"run", "-i", input, "-o", dir, "--delimiter", "::"}, errors.ErrCodeInvalidFormat},
		{"bad role", []string{"run", "-i", badRole, "-o", dir, "--format", "dot"}, errors.ErrCodeSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %q, want %q (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestRunCommand_Config(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "lab.csv", strings.ReplaceAll(lab, ",", ";"))
	output := filepath.Join(dir, "out")
	config := writeFile(t, dir, "netdiag.toml", `
input = "`+filepath.ToSlash(input)+`"
output = "`+filepath.ToSlash(output)+`"
delimiter = ";"
formats = ["dot"]
name = "lab"

[cache]
backend = "none"
`)

	if _, err := execute(t, "--config", config, "run"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(output, "diagram.dot")); err != nil {
		t.Errorf("config formats not applied: %v", err)
	}
	doc, _ := os.ReadFile(filepath.Join(output, "topology.yaml"))
	if !strings.Contains(string(doc), "name: lab") {
		t.Errorf("config name not applied:\n%s", doc)
	}

	// Flags win over the config file.
	if _, err := execute(t, "--config", config, "run", "--format", "d2", "--name", "flagged"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(output, "diagram.d2")); err != nil {
		t.Errorf("flag format not applied: %v", err)
	}
	doc, _ = os.ReadFile(filepath.Join(output, "topology.yaml"))
	if !strings.Contains(string(doc), "name: flagged") {
		t.Errorf("flag name not applied:\n%s", doc)
	}
}

func TestInspectCommand_IgnoresRenderSettings(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "lab.csv", strings.ReplaceAll(lab, ",", ";"))
	config := writeFile(t, dir, "netdiag.toml", `
input = "`+filepath.ToSlash(input)+`"
output = "`+filepath.ToSlash(filepath.Join(dir, "out"))+`"
delimiter = ";"
formats = ["dot2"]
renderer = "d2"
engine = "spring"

[cache]
backend = "none"
`)

	out, err := execute(t, "--config", config, "inspect", "--json")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var doc struct {
		Meta struct {
			Name string `json:"name"`
		} `json:"meta"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if doc.Meta.Name != "topology" {
		t.Errorf("meta.name = %q, want topology", doc.Meta.Name)
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !os.IsNotExist(err) {
		t.Errorf("inspect should not create the output directory: %v", err)
	}
}

func TestInspectCommand(t *testing.T) {
	input := writeFile(t, t.TempDir(), "lab.csv", lab)

	out, err := execute(t, "inspect", "-i", input)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Devices", "Networks", "PC1", "ge0/1", "10.0.12.0/255.255.255.0", "PC1.eth0, PC2.eth0, R1.ge0/0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectCommand_JSON(t *testing.T) {
	input := writeFile(t, t.TempDir(), "lab.csv", lab)

	out, err := execute(t, "inspect", "-i", input, "--json", "--name", "lab")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var doc struct {
		Meta struct {
			ID string `json:"id"`
		} `json:"meta"`
		Networks []struct {
			Name string `json:"name"`
			VLAN any    `json:"vlan"`
		} `json:"networks"`
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if doc.Meta.ID != "lab" {
		t.Errorf("meta.id = %q", doc.Meta.ID)
	}
	if len(doc.Nodes) != 3 || len(doc.Networks) != 2 {
		t.Fatalf("nodes = %d, networks = %d", len(doc.Nodes), len(doc.Networks))
	}
	if doc.Networks[0].VLAN != float64(10) || doc.Networks[1].VLAN != "trunk" {
		t.Errorf("vlans = %v, %v", doc.Networks[0].VLAN, doc.Networks[1].VLAN)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	dir, err = cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheCommands(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != filepath.Join(cacheHome, appName) {
		t.Errorf("cache path = %q", out)
	}

	dir := t.TempDir()
	input := writeFile(t, dir, "lab.csv", lab)
	if _, err := execute(t, "run", "-i", input, "-o", dir, "--format", "dot"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if countEntries(t, filepath.Join(cacheHome, appName)) == 0 {
		t.Fatal("run should populate the cache")
	}

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if n := countEntries(t, filepath.Join(cacheHome, appName)); n != 0 {
		t.Errorf("%d entries left after clear", n)
	}
}

func countEntries(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() && filepath.Ext(path) == ".json" {
			n++
		}
		return nil
	})
	return n
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "netdiag") {
		t.Error("bash completion should mention netdiag")
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should be rejected")
	}
}
