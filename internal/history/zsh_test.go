package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReadExtendedFormat(t *testing.T) {
	input := ": 1700000000:0;git status\n: 1700000060:2;make build\n"

	entries, err := Read(strings.NewReader(input), 100)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Command != "git status" {
		t.Errorf("expected 'git status', got %q", entries[0].Command)
	}
	if !entries[0].Timestamp.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("unexpected timestamp: %v", entries[0].Timestamp)
	}
	if entries[1].Command != "make build" {
		t.Errorf("expected 'make build', got %q", entries[1].Command)
	}
}

func TestReadSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		"plain command without metadata",
		": 1700000000:0;valid command",
		": notanumber:0;skipped",
		": 99999999999999999999:0;timestamp overflow",
		": 1700000100:0;",
		"",
	}, "\n")

	entries, err := Read(strings.NewReader(input), 100)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Command != "valid command" {
		t.Errorf("expected 'valid command', got %q", entries[0].Command)
	}
}

func TestReadCommandContainingSemicolons(t *testing.T) {
	input := ": 1700000000:0;echo a; echo b; echo c\n"

	entries, err := Read(strings.NewReader(input), 10)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if want := "echo a; echo b; echo c"; entries[0].Command != want {
		t.Errorf("expected %q, got %q", want, entries[0].Command)
	}
}

func TestReadTrimsTrailingWhitespace(t *testing.T) {
	input := ": 1700000000:0;ls -la   \t\n"

	entries, err := Read(strings.NewReader(input), 10)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Command != "ls -la" {
		t.Errorf("expected trimmed 'ls -la', got %q", entries[0].Command)
	}
}

func TestReadKeepsOnlyLastMax(t *testing.T) {
	var b strings.Builder
	for i := range 10 {
		b.WriteString(": 170000000")
		b.WriteByte(byte('0' + i))
		b.WriteString(":0;command-")
		b.WriteByte(byte('0' + i))
		b.WriteString("\n")
	}

	entries, err := Read(strings.NewReader(b.String()), 3)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"command-7", "command-8", "command-9"}
	for i, w := range want {
		if entries[i].Command != w {
			t.Errorf("entry %d: expected %q, got %q", i, w, entries[i].Command)
		}
	}
}

func writeHistoryFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".zsh_history")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write history file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeHistoryFile(t,
		": 1700000000:0;git log",
		": 1700000060:0;git diff",
	)

	s, err := LoadFile(path, 100)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if s.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", s.Len())
	}
	if s.Path() != path {
		t.Errorf("expected path %q, got %q", path, s.Path())
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope"), 10)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestStoreReload(t *testing.T) {
	path := writeHistoryFile(t, ": 1700000000:0;first")

	s, err := LoadFile(path, 100)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("failed to open history file: %v", err)
	}
	if _, err := f.WriteString(": 1700000060:0;second\n"); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
	f.Close()

	n, err := s.Reload()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected reload to report 2 entries, got %d", n)
	}
	if got := s.Entries()[1].Command; got != "second" {
		t.Errorf("expected 'second', got %q", got)
	}
}

func TestStoreReloadWithoutSource(t *testing.T) {
	s := NewStore(10)
	if _, err := s.Reload(); err == nil {
		t.Fatal("expected error reloading a store with no source file")
	}
}

func TestDefaultPathFromHistfile(t *testing.T) {
	path := writeHistoryFile(t, ": 1700000000:0;ls")
	t.Setenv("HISTFILE", path)

	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath failed: %v", err)
	}
	if got != path {
		t.Errorf("expected %q, got %q", path, got)
	}
}

func TestDefaultPathFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	histPath := filepath.Join(home, ".zsh_history")
	if err := os.WriteFile(histPath, []byte(": 1700000000:0;ls\n"), 0o600); err != nil {
		t.Fatalf("failed to write history file: %v", err)
	}

	t.Setenv("HOME", home)
	t.Setenv("HISTFILE", filepath.Join(home, "does-not-exist"))

	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath failed: %v", err)
	}
	if got != histPath {
		t.Errorf("expected %q, got %q", histPath, got)
	}
}

func TestDefaultPathMissingEverywhere(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HISTFILE", "")

	if _, err := DefaultPath(); err == nil {
		t.Fatal("expected error when no history file exists")
	}
}
