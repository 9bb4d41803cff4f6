package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/zenoxygen/termsearch/internal/config"
	"github.com/zenoxygen/termsearch/internal/history"
	"github.com/zenoxygen/termsearch/internal/platform"
	"github.com/zenoxygen/termsearch/internal/statsdb"
	"github.com/zenoxygen/termsearch/internal/ui"
)

// handleSearch runs the interactive history search session.
func handleSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	hist := config.GetHistorySettings()

	var outputFile string
	fs.StringVar(&outputFile, "o", "", "Write the selected command to this file")
	fs.StringVar(&outputFile, "output", "", "Write the selected command to this file")
	var maxHistory int
	fs.IntVar(&maxHistory, "m", hist.MaxHistory, "Maximum number of history lines to read")
	fs.IntVar(&maxHistory, "max-history", hist.MaxHistory, "Maximum number of history lines to read")
	var maxResults int
	fs.IntVar(&maxResults, "r", hist.MaxResults, "Maximum number of results to display")
	fs.IntVar(&maxResults, "max-results", hist.MaxResults, "Maximum number of results to display")

	fs.Usage = func() {
		fmt.Println("Usage: termsearch search [term] [options]")
		fmt.Println()
		fmt.Println("Search through the shell history interactively.")
		fmt.Println()
		fmt.Println("Arguments:")
		fmt.Println("  [term]    Initial search term (optional)")
		fmt.Println()
		fmt.Println("Options:")
		fmt.Println("  -o, --output <file>    Write the selected command to a file (default: stdout)")
		fmt.Println("  -m, --max-history <n>  Maximum number of history lines to read (default: 10000)")
		fmt.Println("  -r, --max-results <n>  Maximum number of results to display (default: 10)")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  termsearch search                # Browse most frequent commands")
		fmt.Println("  termsearch search git            # Start with 'git' typed")
		fmt.Println("  termsearch search -o /tmp/pick   # Write the pick to a file")
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}

	if maxHistory < 1 || maxResults < 1 {
		fmt.Fprintln(os.Stderr, "Error: max-history and max-results must be positive")
		os.Exit(1)
	}

	initialQuery := strings.Join(fs.Args(), " ")

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: search needs an interactive terminal")
		os.Exit(1)
	}

	ui.InitTheme(config.ResolveTheme())

	historyPath := hist.File
	if historyPath == "" {
		var err error
		historyPath, err = history.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	store, err := history.LoadFile(historyPath, maxHistory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cliLog.Debug("history loaded", "path", historyPath, "entries", store.Len())

	model := ui.NewModel(store, maxResults, initialQuery)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if hist.GetLiveReload() {
		if warn := platform.CheckFsnotifySupport(historyPath); warn != "" {
			cliLog.Warn("history live reload may not work", "path", historyPath, "reason", warn)
		}
		watcher, err := history.NewWatcher(store)
		if err != nil {
			cliLog.Warn("history watch unavailable", "error", err)
		} else {
			defer watcher.Close()
			go func() {
				for range watcher.ReloadChannel() {
					p.Send(ui.HistoryReloadedMsg{})
				}
			}()
		}
	}

	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m, ok := finalModel.(*ui.Model)
	if !ok {
		return
	}
	command, accepted := m.Selection()
	if !accepted {
		return
	}

	if err := deliverSelection(command, outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	recordSelection(command, m.Query())
}

// deliverSelection hands the accepted command to the caller: into the
// output file when one was given (the zsh widget path), to stdout
// otherwise.
func deliverSelection(command, outputFile string) error {
	if outputFile == "" {
		fmt.Println(command)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(command+"\n"), 0o600); err != nil {
		return fmt.Errorf("write selection: %w", err)
	}
	return nil
}

// recordSelection appends the pick to the stats database. Stats are
// advisory: failures are logged, never surfaced.
func recordSelection(command, query string) {
	dir, err := config.Dir()
	if err != nil {
		cliLog.Warn("stats skipped", "error", err)
		return
	}
	db, err := statsdb.Open(filepath.Join(dir, statsdb.FileName))
	if err != nil {
		cliLog.Warn("stats open failed", "error", err)
		return
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		cliLog.Warn("stats migrate failed", "error", err)
		return
	}
	if err := db.RecordSelection(command, query, time.Now()); err != nil {
		cliLog.Warn("stats record failed", "error", err)
	}
}
