package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(
		"[paths]\nincoming_dir = %q\ntv_dir = %q\nlog_dir = %q\n",
		filepath.Join(base, "incoming"),
		filepath.Join(base, "tv"),
		filepath.Join(base, "logs"),
	)
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestRootHelpListsCommands(t *testing.T) {
	out, _, err := runCLI(t, "", "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"sync", "route", "parse", "hash", "preflight", "config"} {
		requireContains(t, out, name)
	}
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, "", "config", "init", "--path", target)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing-file error, got %v", err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestHashCommandKnownValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.bin")
	if err := os.WriteFile(path, []byte("123456789"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	out, _, err := runCLI(t, "", "hash", "--algorithm", "crc32", path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	requireContains(t, out, "CBF43926")

	_, _, err = runCLI(t, "", "hash", "--algorithm", "sha512", path)
	if err == nil || !strings.Contains(err.Error(), "unsupported hash algorithm") {
		t.Fatalf("expected unsupported algorithm error, got %v", err)
	}
}

func TestParseCommandEmitsJSON(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, _, err := runCLI(t, cfgPath, "parse", "--rules-only", "Kimetsu.no.Yaiba.S02E03.mkv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var result parseOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if result.ShowName != "Kimetsu no Yaiba" {
		t.Fatalf("show name = %q", result.ShowName)
	}
	if result.Season == nil || *result.Season != 2 {
		t.Fatalf("season = %v", result.Season)
	}
	if result.Episode == nil || *result.Episode != 3 {
		t.Fatalf("episode = %v", result.Episode)
	}
}

func TestRouteWithEmptyBacklog(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, _, err := runCLI(t, cfgPath, "route")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	requireContains(t, out, "Nothing to route")
}

func TestStatusEmptyCatalog(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, _, err := runCLI(t, cfgPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "0 files tracked across 0 shows")
}

func TestShowListEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, _, err := runCLI(t, cfgPath, "show", "list")
	if err != nil {
		t.Fatalf("show list: %v", err)
	}
	requireContains(t, out, "No shows tracked")
}

func TestSyncRequiresRemoteConfig(t *testing.T) {
	cfgPath := writeTestConfig(t)

	_, _, err := runCLI(t, cfgPath, "sync")
	if err == nil {
		t.Fatal("expected error without sftp configuration")
	}
}
