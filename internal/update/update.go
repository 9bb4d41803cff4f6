// Package update checks GitHub releases for newer termsearch versions
// and can replace the running binary in place.
package update

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/zenoxygen/termsearch/internal/config"
	"github.com/zenoxygen/termsearch/internal/logging"
)

const (
	// GitHubRepo is the repository checked for releases
	GitHubRepo = "zenoxygen/termsearch"

	// CacheFileName stores the last update check result
	CacheFileName = "update-cache.json"

	// DefaultCheckInterval is how long a cached check stays fresh.
	// Can be overridden via config.toml [updates] check_interval_hours.
	DefaultCheckInterval = 24 * time.Hour
)

var updateLog = logging.ForComponent(logging.CompUpdate)

// checkInterval stores the configurable interval (set via SetCheckInterval)
var checkInterval = DefaultCheckInterval

// SetCheckInterval sets the update check interval from config
func SetCheckInterval(hours int) {
	if hours > 0 {
		checkInterval = time.Duration(hours) * time.Hour
	}
}

// Release represents a GitHub release
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	PublishedAt time.Time `json:"published_at"`
	HTMLURL     string    `json:"html_url"`
	Assets      []Asset   `json:"assets"`
}

// Asset represents a release asset (binary download)
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// UpdateCache stores the last check result
type UpdateCache struct {
	CheckedAt      time.Time `json:"checked_at"`
	LatestVersion  string    `json:"latest_version"`
	CurrentVersion string    `json:"current_version"`
	DownloadURL    string    `json:"download_url"`
	ReleaseURL     string    `json:"release_url"`
}

// UpdateInfo contains information about an available update
type UpdateInfo struct {
	Available      bool
	CurrentVersion string
	LatestVersion  string
	DownloadURL    string
	ReleaseURL     string
}

// cachePath returns the update cache location under the termsearch directory
func cachePath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CacheFileName), nil
}

// loadCache loads the update cache from disk
func loadCache() (*UpdateCache, error) {
	path, err := cachePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cache UpdateCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}

	return &cache, nil
}

// saveCache saves the update cache to disk
func saveCache(cache *UpdateCache) error {
	path, err := cachePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// fetchLatestRelease fetches the latest release from GitHub
func fetchLatestRelease() (*Release, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", GitHubRepo)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to parse release: %w", err)
	}

	return &release, nil
}

// getAssetURL returns the download URL for the current platform
func getAssetURL(release *Release) string {
	goos := runtime.GOOS
	goarch := runtime.GOARCH

	// Release assets are named termsearch_X.Y.Z_os_arch.tar.gz
	version := strings.TrimPrefix(release.TagName, "v")
	expectedName := fmt.Sprintf("termsearch_%s_%s_%s.tar.gz", version, goos, goarch)

	for _, asset := range release.Assets {
		if asset.Name == expectedName {
			return asset.BrowserDownloadURL
		}
	}

	return ""
}

// CompareVersions compares two semantic versions
// Returns: -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
func CompareVersions(v1, v2 string) int {
	v1 = strings.TrimPrefix(v1, "v")
	v2 = strings.TrimPrefix(v2, "v")

	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")

	// Pad with zeros
	for len(parts1) < 3 {
		parts1 = append(parts1, "0")
	}
	for len(parts2) < 3 {
		parts2 = append(parts2, "0")
	}

	for i := 0; i < 3; i++ {
		var n1, n2 int
		_, _ = fmt.Sscanf(parts1[i], "%d", &n1)
		_, _ = fmt.Sscanf(parts2[i], "%d", &n2)

		if n1 < n2 {
			return -1
		}
		if n1 > n2 {
			return 1
		}
	}

	return 0
}

// CheckForUpdate checks if a new version is available.
// Uses the on-disk cache to avoid hitting the GitHub API too frequently.
func CheckForUpdate(currentVersion string, forceCheck bool) (*UpdateInfo, error) {
	info := &UpdateInfo{
		Available:      false,
		CurrentVersion: currentVersion,
	}

	if !forceCheck {
		cache, err := loadCache()
		if err == nil && time.Since(cache.CheckedAt) < checkInterval {
			updateLog.Debug("using cached release info",
				"latest", cache.LatestVersion, "checked_at", cache.CheckedAt)
			info.LatestVersion = cache.LatestVersion
			info.DownloadURL = cache.DownloadURL
			info.ReleaseURL = cache.ReleaseURL
			info.Available = CompareVersions(currentVersion, cache.LatestVersion) < 0
			return info, nil
		}
	}

	updateLog.Debug("fetching latest release", "repo", GitHubRepo, "force", forceCheck)
	release, err := fetchLatestRelease()
	if err != nil {
		return info, err
	}

	latestVersion := strings.TrimPrefix(release.TagName, "v")
	downloadURL := getAssetURL(release)

	cache := &UpdateCache{
		CheckedAt:      time.Now(),
		LatestVersion:  latestVersion,
		CurrentVersion: currentVersion,
		DownloadURL:    downloadURL,
		ReleaseURL:     release.HTMLURL,
	}
	if err := saveCache(cache); err != nil {
		updateLog.Warn("failed to save update cache", "error", err)
	}

	info.LatestVersion = latestVersion
	info.DownloadURL = downloadURL
	info.ReleaseURL = release.HTMLURL
	info.Available = CompareVersions(currentVersion, latestVersion) < 0

	return info, nil
}

// PerformUpdate downloads and installs the latest version
func PerformUpdate(downloadURL string) error {
	if downloadURL == "" {
		return fmt.Errorf("no download URL available for %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("failed to resolve symlinks: %w", err)
	}

	fmt.Printf("Downloading from %s...\n", downloadURL)
	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Get(downloadURL)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp("", "termsearch-update-*.tar.gz")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	_, err = io.Copy(tmpFile, resp.Body)
	tmpFile.Close()
	if err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}

	fmt.Println("Extracting...")
	binaryData, err := extractBinaryFromTarGz(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to extract: %w", err)
	}

	newBinaryPath := execPath + ".new"
	if err := os.WriteFile(newBinaryPath, binaryData, 0o755); err != nil {
		return fmt.Errorf("failed to write new binary: %w", err)
	}

	// Swap binaries: back up the old one, move the new one into place,
	// restore the backup if the move fails.
	oldBinaryPath := execPath + ".old"
	if err := os.Rename(execPath, oldBinaryPath); err != nil {
		os.Remove(newBinaryPath)
		return fmt.Errorf("failed to backup old binary: %w", err)
	}

	if err := os.Rename(newBinaryPath, execPath); err != nil {
		_ = os.Rename(oldBinaryPath, execPath)
		return fmt.Errorf("failed to install new binary: %w", err)
	}

	os.Remove(oldBinaryPath)

	updateLog.Info("binary updated", "path", execPath)
	fmt.Println("✓ Update complete!")
	return nil
}

// ChangelogEntry represents a single version's changelog
type ChangelogEntry struct {
	Version string
	Date    string
	Content string
}

// FetchChangelog fetches the CHANGELOG.md from GitHub
func FetchChangelog() (string, error) {
	url := fmt.Sprintf("https://raw.githubusercontent.com/%s/main/CHANGELOG.md", GitHubRepo)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch changelog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch changelog: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max
	if err != nil {
		return "", fmt.Errorf("failed to read changelog: %w", err)
	}

	return string(data), nil
}

// ParseChangelog parses CHANGELOG.md and returns entries for versions
func ParseChangelog(content string) []ChangelogEntry {
	var entries []ChangelogEntry
	lines := strings.Split(content, "\n")

	var currentEntry *ChangelogEntry
	var contentBuilder strings.Builder

	for _, line := range lines {
		// Version headers look like: ## [0.3.0] - 2026-05-14
		if strings.HasPrefix(line, "## [") {
			if currentEntry != nil {
				currentEntry.Content = strings.TrimSpace(contentBuilder.String())
				entries = append(entries, *currentEntry)
			}

			rest := strings.TrimPrefix(line, "## [")
			parts := strings.SplitN(rest, "]", 2)
			if len(parts) >= 1 {
				version := parts[0]
				date := ""
				if len(parts) >= 2 && strings.Contains(parts[1], " - ") {
					dateParts := strings.SplitN(parts[1], " - ", 2)
					if len(dateParts) >= 2 {
						date = strings.TrimSpace(dateParts[1])
					}
				}
				currentEntry = &ChangelogEntry{
					Version: version,
					Date:    date,
				}
				contentBuilder.Reset()
			}
		} else if currentEntry != nil {
			contentBuilder.WriteString(line)
			contentBuilder.WriteString("\n")
		}
	}

	if currentEntry != nil {
		currentEntry.Content = strings.TrimSpace(contentBuilder.String())
		entries = append(entries, *currentEntry)
	}

	return entries
}

// GetChangesBetweenVersions returns changelog entries between two versions
// (exclusive of current, inclusive of latest)
func GetChangesBetweenVersions(entries []ChangelogEntry, currentVersion, latestVersion string) []ChangelogEntry {
	var result []ChangelogEntry

	currentVersion = strings.TrimPrefix(currentVersion, "v")
	latestVersion = strings.TrimPrefix(latestVersion, "v")

	for _, entry := range entries {
		entryVersion := strings.TrimPrefix(entry.Version, "v")

		if CompareVersions(entryVersion, currentVersion) > 0 &&
			CompareVersions(entryVersion, latestVersion) <= 0 {
			result = append(result, entry)
		}
	}

	return result
}

// FormatChangelogForDisplay formats changelog entries for terminal display
func FormatChangelogForDisplay(entries []ChangelogEntry) string {
	if len(entries) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n━━━ What's New ━━━\n")

	for _, entry := range entries {
		header := fmt.Sprintf("\n📦 v%s", entry.Version)
		if entry.Date != "" {
			header += fmt.Sprintf(" (%s)", entry.Date)
		}
		sb.WriteString(header)
		sb.WriteString("\n")

		lines := strings.Split(entry.Content, "\n")
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if strings.HasPrefix(line, "### ") {
				section := strings.TrimPrefix(line, "### ")
				sb.WriteString(fmt.Sprintf("\n  [%s]\n", section))
			} else {
				sb.WriteString(fmt.Sprintf("  %s\n", line))
			}
		}
	}

	sb.WriteString("\n━━━━━━━━━━━━━━━━━━\n")
	return sb.String()
}

// extractBinaryFromTarGz extracts the termsearch binary from a .tar.gz file
func extractBinaryFromTarGz(tarPath string) ([]byte, error) {
	file, err := os.Open(tarPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if header.Typeflag == tar.TypeReg && header.Name == "termsearch" {
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, err
			}
			return data, nil
		}
	}

	return nil, fmt.Errorf("termsearch binary not found in archive")
}
