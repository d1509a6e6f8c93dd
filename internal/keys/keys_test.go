package keys

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestEnsure_GeneratesFreshPair(t *testing.T) {
	dir := t.TempDir()

	if err := Ensure(dir, testLogger()); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	for _, name := range []string{PrivateFileName, PublicFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}

	pair, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pair.Private == nil || pair.Public == nil {
		t.Fatalf("expected both keys parsed")
	}
	if pair.Private.PublicKey.N.Cmp(pair.Public.N) != 0 {
		t.Fatalf("public key does not match private key")
	}
}

func TestEnsure_KeepsExistingPair(t *testing.T) {
	dir := t.TempDir()

	if err := Ensure(dir, testLogger()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	before, err := os.ReadFile(filepath.Join(dir, PrivateFileName))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if err := Ensure(dir, testLogger()); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	after, err := os.ReadFile(filepath.Join(dir, PrivateFileName))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(before) != string(after) {
		t.Fatalf("existing pair must not be regenerated")
	}
}

func TestEnsure_RepairsStrayKey(t *testing.T) {
	dir := t.TempDir()

	if err := Ensure(dir, testLogger()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	stale, err := os.ReadFile(filepath.Join(dir, PublicFileName))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	// Simulate a corrupted state: private key lost, public key left behind.
	if err := os.Remove(filepath.Join(dir, PrivateFileName)); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if err := Ensure(dir, testLogger()); err != nil {
		t.Fatalf("repair ensure: %v", err)
	}

	fresh, err := os.ReadFile(filepath.Join(dir, PublicFileName))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(stale) == string(fresh) {
		t.Fatalf("stray public key must be replaced along with the private key")
	}

	if _, err := Load(dir); err != nil {
		t.Fatalf("load after repair: %v", err)
	}
}

func TestLoad_FailsWithoutKeys(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatalf("expected error loading from empty dir")
	}
}

func TestLoad_FailsOnGarbage(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{PrivateFileName, PublicFileName} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("not a pem"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected parse error on garbage pem")
	}
}
