package history

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/zenoxygen/termsearch/internal/logging"
)

var histLog = logging.ForComponent(logging.CompHistory)

// extendedLine matches zsh extended history: ": <unix-ts>:<duration>;<command>".
var extendedLine = regexp.MustCompile(`^: (\d+):\d+;(.*)$`)

// maxLineBytes bounds a single history line. zsh commands rarely exceed a
// few KB, but pasted blobs happen.
const maxLineBytes = 1024 * 1024

// DefaultPath returns the history file to read: $HISTFILE when it names an
// existing regular file, otherwise ~/.zsh_history.
func DefaultPath() (string, error) {
	if histfile := os.Getenv("HISTFILE"); histfile != "" {
		if fi, err := os.Stat(histfile); err == nil && fi.Mode().IsRegular() {
			histLog.Debug("history_path_from_env", slog.String("path", histfile))
			return histfile, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	path := filepath.Join(home, ".zsh_history")
	if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
		return "", fmt.Errorf("zsh history file not found at %s", path)
	}
	return path, nil
}

// Read parses zsh extended history from r, keeping only the last max
// entries. Lines that do not match the extended format, carry a bad
// timestamp, or hold an empty command are skipped.
func Read(r io.Reader, max int) ([]Entry, error) {
	if max < 1 {
		max = 1
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	entries := make([]Entry, 0, min(max, 1024))
	lineNum := 0
	for scanner.Scan() {
		lineNum++

		caps := extendedLine.FindStringSubmatch(scanner.Text())
		if caps == nil {
			continue
		}

		ts, err := strconv.ParseInt(caps[1], 10, 64)
		if err != nil {
			histLog.Debug("history_bad_timestamp", slog.Int("line", lineNum))
			continue
		}

		command := strings.TrimRight(caps[2], " \t")
		if command == "" {
			continue
		}

		if len(entries) >= max {
			n := copy(entries, entries[1:])
			entries = entries[:n]
		}
		entries = append(entries, Entry{
			Command:   command,
			Timestamp: time.Unix(ts, 0),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	histLog.Debug("history_read", slog.Int("entries", len(entries)))
	return entries, nil
}

// ReadFile parses the history file at path, keeping the last max entries.
func ReadFile(path string, max int) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	return Read(f, max)
}

// LoadFile reads path into a new Store bound to it, so Reload can re-read
// the same file later.
func LoadFile(path string, max int) (*Store, error) {
	entries, err := ReadFile(path, max)
	if err != nil {
		return nil, err
	}

	s := NewStore(max)
	s.path = path
	s.ReplaceAll(entries)
	return s, nil
}

// Reload re-reads the store's source file and swaps the contents.
// Concurrent calls collapse into a single read. Returns the entry count.
func (s *Store) Reload() (int, error) {
	if s.path == "" {
		return 0, fmt.Errorf("history store has no source file")
	}

	v, err, _ := s.reload.Do("reload", func() (any, error) {
		entries, err := ReadFile(s.path, s.max)
		if err != nil {
			return 0, err
		}
		s.ReplaceAll(entries)
		return len(entries), nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}
