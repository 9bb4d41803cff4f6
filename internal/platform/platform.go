package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform represents the detected host environment
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformWSL1    Platform = "wsl1"
	PlatformWSL2    Platform = "wsl2"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

// cached detection result
var detectedPlatform Platform
var detectionDone bool

// Detect returns the current platform, caching the result
func Detect() Platform {
	if detectionDone {
		return detectedPlatform
	}

	detectedPlatform = detectPlatform()
	detectionDone = true
	return detectedPlatform
}

func detectPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "linux":
		// Could be native Linux or WSL
		return detectLinuxOrWSL()
	default:
		return PlatformUnknown
	}
}

// detectLinuxOrWSL distinguishes between native Linux and WSL (1 or 2)
func detectLinuxOrWSL() Platform {
	// WSL_DISTRO_NAME is set in WSL environments
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		return detectWSLVersion()
	}

	procVersion, err := os.ReadFile("/proc/version")
	if err != nil {
		return PlatformLinux
	}

	versionStr := string(procVersion)
	if strings.Contains(versionStr, "microsoft") || strings.Contains(versionStr, "Microsoft") {
		return detectWSLVersion()
	}

	return PlatformLinux
}

// detectWSLVersion distinguishes between WSL1 and WSL2.
// WSL2 kernels report "microsoft-standard" in /proc/version, WSL1
// reports "Microsoft" without "standard".
func detectWSLVersion() Platform {
	procVersion, err := os.ReadFile("/proc/version")
	if err == nil {
		versionStr := string(procVersion)

		if strings.Contains(versionStr, "microsoft-standard") {
			return PlatformWSL2
		}
		if strings.Contains(versionStr, "Microsoft") {
			return PlatformWSL1
		}
	}

	// /run/WSL and /dev/vsock exist only under the WSL2 VM
	if _, err := os.Stat("/run/WSL"); err == nil {
		return PlatformWSL2
	}
	if _, err := os.Stat("/dev/vsock"); err == nil {
		return PlatformWSL2
	}

	return PlatformWSL1
}

// String returns a human-readable platform name
func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macOS"
	case PlatformLinux:
		return "Linux"
	case PlatformWSL1:
		return "WSL1"
	case PlatformWSL2:
		return "WSL2"
	case PlatformWindows:
		return "Windows"
	default:
		return "Unknown"
	}
}

// CheckFsnotifySupport checks whether a path sits on a filesystem that
// delivers inotify events reliably. Returns a warning message for
// problematic mounts (9p, nfs, cifs, sshfs), or an empty string when
// watching should work normally.
func CheckFsnotifySupport(path string) string {
	// 9p and friends only show up on Linux (WSL2 mounts Windows drives via 9p)
	if runtime.GOOS != "linux" {
		return ""
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	mounts, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return ""
	}

	return watchWarning(absPath, string(mounts))
}

// watchWarning finds the longest mount point containing absPath in
// /proc/mounts content and reports known-bad filesystem types.
// Lines look like: device mountpoint fstype options ...
func watchWarning(absPath, mounts string) string {
	var matchedMount, matchedFsType string
	for _, line := range strings.Split(mounts, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		mountPoint := fields[1]
		fsType := fields[2]

		if strings.HasPrefix(absPath, mountPoint) {
			if len(mountPoint) > len(matchedMount) {
				matchedMount = mountPoint
				matchedFsType = fsType
			}
		}
	}

	switch {
	case matchedFsType == "9p":
		return "path is on a 9p mount (WSL2 Windows drive): watch events are not delivered"
	case matchedFsType == "nfs" || matchedFsType == "nfs4":
		return "path is on an NFS mount: watch events may be unreliable"
	case matchedFsType == "cifs" || matchedFsType == "smbfs":
		return "path is on a CIFS/SMB mount: watch events may be unreliable"
	case strings.HasPrefix(matchedFsType, "fuse.sshfs"):
		return "path is on an SSHFS mount: watch events are not delivered"
	}

	return ""
}
