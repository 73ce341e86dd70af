package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lookahead/internal/config"
	"lookahead/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("XDG_STATE_HOME", "")

	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithJournal()}, opts...)...)
	cfg.Logging.Level = "error"

	configPath := filepath.Join(homeDir, ".config", "lookahead", "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func decodeSummary(t *testing.T, out string) summaryJSON {
	t.Helper()
	var summary summaryJSON
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	return summary
}

func summaryHeads(summary summaryJSON) []int64 {
	out := make([]int64, len(summary.Runs))
	for i, r := range summary.Runs {
		out[i] = r.Head
	}
	return out
}

func TestConfigInitShowAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Mode: inline")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# source: "+env.configPath)
	requireContains(t, out, "reorder_delay = 3")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestRunPrintsDecidedRuns(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--frames", "12", "--scenecut", "6", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	summary := decodeSummary(t, out)
	if diff := cmp.Diff([]int64{0, 4, 6, 10}, summaryHeads(summary)); diff != "" {
		t.Fatalf("run heads mismatch (-want +got):\n%s", diff)
	}
	if summary.Mode != "inline" || summary.Frames != 12 || summary.Keyframes != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !summary.Runs[2].SceneCut || !summary.Runs[2].Keyframe {
		t.Fatalf("expected scene cut keyframe at frame 6, got %+v", summary.Runs[2])
	}

	out, _, err = runCLI(t, []string{"run", "--frames", "6", "--pattern", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("run with pattern: %v", err)
	}
	requireContains(t, out, "run 0 head=0 type=keyframe run_length=1 frames=0-1")
	requireContains(t, out, "run 2 head=4 type=reference run_length=1 frames=4-5")
}

func TestRunThreadedOverride(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--frames", "40", "--sync-lookahead", "4", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	summary := decodeSummary(t, out)
	if summary.Mode != "threaded" || summary.Frames != 40 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestJournalCommandsAndReplay(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--frames", "12", "--scenecut", "6", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	first := decodeSummary(t, out)

	out, _, err = runCLI(t, []string{"journal", "sessions"}, env.configPath)
	if err != nil {
		t.Fatalf("journal sessions: %v", err)
	}
	requireContains(t, out, first.SessionID+" mode=inline runs=4 frames=12 keyframes=2 finished=yes")

	out, _, err = runCLI(t, []string{"journal", "show", first.SessionID}, env.configPath)
	if err != nil {
		t.Fatalf("journal show: %v", err)
	}
	requireContains(t, out, "Session: "+first.SessionID)
	requireContains(t, out, "head=6 type=keyframe")

	out, _, err = runCLI(t, []string{"run", "--frames", "12", "--scenecut", "6", "--replay", first.SessionID, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("run --replay: %v", err)
	}
	replayed := decodeSummary(t, out)
	if replayed.ReplayOf != first.SessionID {
		t.Fatalf("expected replay of %s, got %q", first.SessionID, replayed.ReplayOf)
	}
	if diff := cmp.Diff(summaryHeads(first), summaryHeads(replayed)); diff != "" {
		t.Fatalf("replay diverged (-first +replay):\n%s", diff)
	}

	out, _, err = runCLI(t, []string{"journal", "remove", first.SessionID, "missing"}, env.configPath)
	if err != nil {
		t.Fatalf("journal remove: %v", err)
	}
	requireContains(t, out, "Removed session "+first.SessionID)
	requireContains(t, out, "Session missing not found")

	if _, _, err := runCLI(t, []string{"journal", "show", first.SessionID}, env.configPath); err == nil {
		t.Fatal("expected show of removed session to fail")
	}
}

func TestJournalCommandsRequireJournal(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"journal", "sessions"}, env.configPath); err == nil {
		t.Fatal("expected error before any session was journaled")
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "ok")
	if strings.Contains(out, "failed") {
		t.Fatalf("unexpected failed check: %q", out)
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	tests := [][]string{
		{"run", "--pattern", "1,x"},
		{"run", "--pattern", "1", "--bframes", "1"},
		{"run", "--bframes", "9"},
		{"run", "--frames", "-1"},
		{"run", "--sync-lookahead", "999"},
	}
	for _, args := range tests {
		if _, _, err := runCLI(t, args, env.configPath); err == nil {
			t.Fatalf("expected %v to fail", args)
		}
	}
}

func TestLogsCommandFiltersBySession(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Logging.Level = "info"
	env.cfg.Logging.File = filepath.Join(filepath.Dir(env.cfg.Paths.StateDir), "logs", "lookahead.log")
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"run", "--frames", "8", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	summary := decodeSummary(t, out)

	out, _, err = runCLI(t, []string{"logs", "--lines", "0", "--session", summary.SessionID}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "session_id="+summary.SessionID)

	out, _, err = runCLI(t, []string{"logs", "--session", "not-a-session"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no lines for unknown session, got %q", out)
	}
}
