package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zenoxygen/termsearch/internal/config"
	"github.com/zenoxygen/termsearch/internal/statsdb"
)

// handleStats prints the most frequently selected commands.
func handleStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	hist := config.GetHistorySettings()

	var maxResults int
	fs.IntVar(&maxResults, "r", hist.MaxResults, "Maximum number of commands to show")
	fs.IntVar(&maxResults, "max-results", hist.MaxResults, "Maximum number of commands to show")

	fs.Usage = func() {
		fmt.Println("Usage: termsearch stats [options]")
		fmt.Println()
		fmt.Println("Show the commands most often accepted from the picker.")
		fmt.Println()
		fmt.Println("Options:")
		fmt.Println("  -r, --max-results <n>  Maximum number of commands to show (default: 10)")
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}
	if maxResults < 1 {
		fmt.Fprintln(os.Stderr, "Error: max-results must be positive")
		os.Exit(1)
	}

	dir, err := config.Dir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	db, err := statsdb.Open(filepath.Join(dir, statsdb.FileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open stats: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	top, err := db.TopCommands(maxResults)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	total, err := db.TotalSelections()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printStats(os.Stdout, top, total)

	printUpdateNotice()
}

// printStats renders the selection counts as a two-column table.
func printStats(w io.Writer, top []statsdb.CommandCount, total int) {
	if len(top) == 0 {
		fmt.Fprintln(w, "No selections recorded yet.")
		return
	}

	fmt.Fprintf(w, "%5s  %s\n", "COUNT", "COMMAND")
	for _, cc := range top {
		fmt.Fprintf(w, "%5d  %s\n", cc.Count, cc.Command)
	}
	fmt.Fprintf(w, "\nTotal: %d selections\n", total)
}
