package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/zenoxygen/termsearch/internal/update"
)

// handleUpdate checks for and installs a newer release
func handleUpdate(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	checkOnly := fs.Bool("check", false, "Only check for updates, don't install")

	fs.Usage = func() {
		fmt.Println("Usage: termsearch update [options]")
		fmt.Println()
		fmt.Println("Check GitHub for a newer release and install it in place.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  termsearch update           # Check and install if available")
		fmt.Println("  termsearch update --check   # Only check, don't install")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	fmt.Printf("termsearch v%s\n", Version)
	fmt.Println("Checking for updates...")

	// Explicit update requests always hit GitHub; the cache only serves
	// the passive notices.
	info, err := update.CheckForUpdate(Version, true)
	if err != nil {
		fmt.Printf("Error checking for updates: %v\n", err)
		os.Exit(1)
	}

	if !info.Available {
		fmt.Println("✓ You're running the latest version!")
		return
	}

	fmt.Printf("\n⬆ Update available: v%s → v%s\n", info.CurrentVersion, info.LatestVersion)
	fmt.Printf("  Release: %s\n", info.ReleaseURL)

	displayChangelog(info.CurrentVersion, info.LatestVersion)

	if *checkOnly {
		fmt.Println("\nRun 'termsearch update' to install.")
		return
	}

	// Drain buffered input before prompting so stray keypresses from the
	// changelog scroll don't answer the question.
	drainStdin()
	fmt.Print("\nInstall update? [Y/n] ")
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(response)
	if response != "" && response != "y" && response != "Y" {
		fmt.Println("Update cancelled.")
		return
	}

	fmt.Println()
	if err := update.PerformUpdate(info.DownloadURL); err != nil {
		fmt.Printf("Error installing update: %v\n", err)
		os.Exit(1)
	}

	refreshZshWidget()

	fmt.Printf("\n✓ Updated to v%s\n", info.LatestVersion)
	fmt.Println("  Restart your shell to pick up the new binary.")
}

// displayChangelog fetches and displays changelog entries between versions
func displayChangelog(currentVersion, latestVersion string) {
	changelog, err := update.FetchChangelog()
	if err != nil {
		fmt.Println("\n  (Could not fetch changelog. See release notes at the URL above.)")
		return
	}

	entries := update.ParseChangelog(changelog)
	changes := update.GetChangesBetweenVersions(entries, currentVersion, latestVersion)

	if len(changes) > 0 {
		fmt.Print(update.FormatChangelogForDisplay(changes))
	}
}

// refreshZshWidget rewrites an already installed widget script so it stays
// in step with the binary. Users who never ran 'termsearch init' keep not
// having one.
func refreshZshWidget() {
	dir := zshConfigDir()
	if _, err := os.Stat(filepath.Join(dir, zshWidgetFileName)); err != nil {
		return
	}

	if _, err := installZshWidget(dir); err != nil {
		cliLog.Warn("failed to refresh zsh widget", "error", err)
	}
}

// drainStdin discards pending terminal input so a prompt reads a fresh
// answer. TCFLSH differs per OS, so try the Darwin value first and fall
// back to the Linux one.
func drainStdin() {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	const (
		tcflshDarwin = 0x80047410
		tcflshLinux  = 0x540B
		tciflush     = 0 // flush input queue
	)

	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), tcflshDarwin, tciflush)
	if errno != 0 {
		_, _, _ = syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), tcflshLinux, tciflush)
	}
}
