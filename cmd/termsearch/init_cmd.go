package main

import (
	_ "embed"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zenoxygen/termsearch/internal/config"
)

// zshWidgetFileName is the script installed into the zsh config directory
const zshWidgetFileName = "termsearch.zsh"

//go:embed termsearch.zsh
var zshWidget string

// handleInit installs the zsh widget and seeds an example config.
func handleInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Println("Usage: termsearch init")
		fmt.Println()
		fmt.Println("Initialize termsearch for the current shell:")
		fmt.Println("  - writes termsearch.zsh to $ZDOTDIR (or $HOME)")
		fmt.Println("  - sources it from .zshrc (once)")
		fmt.Println("  - creates a commented ~/.termsearch/config.toml (if missing)")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	widgetPath, err := installZshWidget(zshConfigDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cliLog.Debug("widget installed", "path", widgetPath)

	if err := config.CreateExampleConfig(); err != nil {
		cliLog.Warn("example config not written", "error", err)
	}

	fmt.Println("Successfully initialized termsearch. Restart your terminal to enable it.")

	printUpdateNotice()
}

// zshConfigDir resolves where zsh startup files live: $ZDOTDIR when set,
// the home directory otherwise.
func zshConfigDir() string {
	if dir := os.Getenv("ZDOTDIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// installZshWidget writes the widget script into dir and sources it from
// the .zshrc there. Re-running is a no-op when the source line already
// exists. Returns the widget path.
func installZshWidget(dir string) (string, error) {
	widgetPath := filepath.Join(dir, zshWidgetFileName)
	if err := os.WriteFile(widgetPath, []byte(zshWidget), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", widgetPath, err)
	}

	zshrcPath := filepath.Join(dir, ".zshrc")
	sourceLine := fmt.Sprintf("source %s", widgetPath)
	if err := appendLineOnce(zshrcPath, sourceLine); err != nil {
		return "", err
	}
	return widgetPath, nil
}

// appendLineOnce appends line to the file unless the file already
// contains it. Creates the file when missing.
func appendLineOnce(path, line string) error {
	if existing, err := os.ReadFile(path); err == nil {
		if strings.Contains(string(existing), line) {
			return nil
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, line); err != nil {
		return fmt.Errorf("append to %s: %w", path, err)
	}
	return nil
}
