package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/zenoxygen/termsearch/internal/config"
	"github.com/zenoxygen/termsearch/internal/logging"
	"github.com/zenoxygen/termsearch/internal/platform"
	"github.com/zenoxygen/termsearch/internal/update"
)

const Version = "0.3.0"

var cliLog = logging.ForComponent(logging.CompCLI)

// init sets up the color profile before any styles render
func init() {
	initColorProfile()
	initUpdateSettings()
}

// initUpdateSettings configures release checking from user config
func initUpdateSettings() {
	settings := config.GetUpdateSettings()
	update.SetCheckInterval(settings.CheckIntervalHours)
}

// printUpdateNotice prints a one-liner on stderr when a newer release is
// known. Kept off the search path so the widget never waits on it.
func printUpdateNotice() {
	settings := config.GetUpdateSettings()
	if !settings.GetCheckEnabled() || !settings.GetNotifyInCLI() {
		return
	}

	info, err := update.CheckForUpdate(Version, false)
	if err != nil || info == nil || !info.Available {
		return
	}

	fmt.Fprintf(os.Stderr, "\n💡 Update available: v%s → v%s (run: termsearch update)\n",
		info.CurrentVersion, info.LatestVersion)
}

// initColorProfile configures lipgloss color profile based on terminal capabilities.
// Prefers TrueColor for best visuals, falls back to ANSI256 for compatibility.
func initColorProfile() {
	// Allow user override via environment variable
	// TERMSEARCH_COLOR: truecolor, 256, 16, none
	if colorEnv := os.Getenv("TERMSEARCH_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	// Explicit TrueColor support
	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	// Known TrueColor-capable terminals
	term := os.Getenv("TERM")
	trueColorTerms := []string{
		"xterm-256color",
		"screen-256color",
		"tmux-256color",
		"xterm-direct",
		"alacritty",
		"kitty",
		"wezterm",
	}
	for _, t := range trueColorTerms {
		if strings.Contains(term, t) || term == t {
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		}
	}

	// Fallback: ANSI256 works in SSH, basic terminals, and older emulators
	lipgloss.SetColorProfile(termenv.ANSI256)
}

// setupLogging routes slog to the rotating file under the termsearch
// directory. The TUI owns the terminal, so nothing may log to
// stdout/stderr; a failure to resolve the log directory just leaves
// logging discarded.
func setupLogging() {
	logDir, err := config.LogDir()
	if err != nil {
		logging.Init(logging.Config{})
		return
	}

	ls := config.GetLogSettings()
	logging.Init(logging.Config{
		LogDir:     logDir,
		Level:      logging.LevelFromEnv(ls.Level),
		Format:     ls.Format,
		MaxSizeMB:  ls.MaxSizeMB,
		MaxBackups: ls.MaxBackups,
		MaxAgeDays: ls.MaxAgeDays,
		Compress:   ls.GetCompress(),
	})

	// SIGUSR1 dumps the ring buffer for post-mortem debugging
	usr1Chan := make(chan os.Signal, 1)
	signal.Notify(usr1Chan, syscall.SIGUSR1)
	go func() {
		for range usr1Chan {
			dumpPath := filepath.Join(logDir, fmt.Sprintf("crash-dump-%d.log", time.Now().Unix()))
			if err := logging.DumpRingBuffer(dumpPath); err != nil {
				cliLog.Error("crash_dump_failed", "error", err)
			} else {
				cliLog.Info("crash_dump_written", "path", dumpPath)
			}
		}
	}()
}

func main() {
	setupLogging()
	defer logging.Shutdown()

	cliLog.Debug("starting", "version", Version, "platform", platform.Detect().String())

	args := os.Args[1:]
	if len(args) == 0 {
		printHelp()
		return
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Printf("termsearch v%s\n", Version)
	case "help", "--help", "-h":
		printHelp()
	case "search":
		handleSearch(args[1:])
	case "init":
		handleInit(args[1:])
	case "stats":
		handleStats(args[1:])
	case "update":
		handleUpdate(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Printf("termsearch v%s\n", Version)
	fmt.Println("A minimalist and super fast terminal history search tool.")
	fmt.Println()
	fmt.Println("Usage: termsearch <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  search [term]    Search through the shell history interactively")
	fmt.Println("  init             Install the zsh widget (binds ctrl-r)")
	fmt.Println("  stats            Show the most frequently selected commands")
	fmt.Println("  update           Check for and install a newer release")
	fmt.Println("  version          Show version")
	fmt.Println("  help             Show this help")
	fmt.Println()
	fmt.Println("Search Options:")
	fmt.Println("  -o, --output <file>    Write the selected command to a file")
	fmt.Println("  -m, --max-history <n>  History lines to load (default: 10000)")
	fmt.Println("  -r, --max-results <n>  Results to display (default: 10)")
	fmt.Println()
	fmt.Println("Keys:")
	fmt.Println("  type             Narrow the match list")
	fmt.Println("  up/down, tab     Move the selection (wraps around)")
	fmt.Println("  enter            Accept the highlighted command")
	fmt.Println("  esc, ctrl-c      Cancel")
	fmt.Println()
	fmt.Println("Config: ~/.termsearch/config.toml (see 'termsearch init')")
}
