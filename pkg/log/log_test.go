package log

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCallsBeforeInitAreNoops(t *testing.T) {
	Info("before init")
	Infof("before init %d", 1)
	Error("before init", errors.New("boom"))
	Sync()
}

func TestInitWritesToOutputPath(t *testing.T) {
	dir := t.TempDir()
	Init("warn", "json", dir)
	t.Cleanup(func() { Init("error", "json", "") })

	Infof("dropped below level")
	Warnf("session %s evicted", "s-1")
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "session s-1 evicted") {
		t.Fatalf("log file missing warn line: %q", out)
	}
	if strings.Contains(out, "dropped below level") {
		t.Fatalf("info line written at warn level: %q", out)
	}
}
