package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadPeerAddressCreatesLoopbackDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ip.txt")

	addr, err := LoadPeerAddress(path)
	if err != nil {
		t.Fatalf("LoadPeerAddress: %v", err)
	}
	if addr != DefaultPeerAddress {
		t.Fatalf("addr = %q, want %q", addr, DefaultPeerAddress)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected file to be created: %v", err)
	}
	if string(b) != DefaultPeerAddress {
		t.Fatalf("file content = %q, want %q", b, DefaultPeerAddress)
	}
}

func TestLoadPeerAddressReadsFirstToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ip.txt")
	if err := os.WriteFile(path, []byte("  10.0.0.7 \nignored\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	addr, err := LoadPeerAddress(path)
	if err != nil {
		t.Fatalf("LoadPeerAddress: %v", err)
	}
	if addr != "10.0.0.7" {
		t.Fatalf("addr = %q, want 10.0.0.7", addr)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvAddr, ":6000")
	t.Setenv(EnvMaxPlayers, "4")
	t.Setenv(EnvTickHz, "30")
	t.Setenv(EnvClientTimeout, "1500ms")

	s := DefaultServer()
	if err := ApplyEnv(&s); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if s.Addr != ":6000" || s.MaxPlayers != 4 || s.TickHz != 30 {
		t.Fatalf("unexpected overrides: %+v", s)
	}
	if s.ClientTimeout != 1500*time.Millisecond {
		t.Fatalf("ClientTimeout = %v, want 1.5s", s.ClientTimeout)
	}
}

func TestApplyEnvRejectsGarbageButKeepsDefaults(t *testing.T) {
	t.Setenv(EnvMaxPlayers, "many")
	s := DefaultServer()
	if err := ApplyEnv(&s); err == nil {
		t.Fatalf("expected error for non-numeric max players")
	}
	if s.MaxPlayers != DefaultServer().MaxPlayers {
		t.Fatalf("MaxPlayers changed to %d on bad input", s.MaxPlayers)
	}
}

func TestLoadEnvMissingFileIsNotAnError(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadEnv on missing file: %v", err)
	}
}

func TestTickInterval(t *testing.T) {
	s := DefaultServer()
	if got := s.TickInterval(); got != 50*time.Millisecond {
		t.Fatalf("TickInterval = %v, want 50ms", got)
	}
	s.TickHz = 0
	if got := s.TickInterval(); got != 50*time.Millisecond {
		t.Fatalf("TickInterval with 0 Hz = %v, want fallback 50ms", got)
	}
}
