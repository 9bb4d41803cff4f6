package platform

import (
	"runtime"
	"testing"
)

func TestDetect(t *testing.T) {
	// Reset detection cache for clean test
	detectionDone = false
	detectedPlatform = ""

	p := Detect()

	if p == "" {
		t.Error("Detect() returned empty platform")
	}

	switch runtime.GOOS {
	case "darwin":
		if p != PlatformMacOS {
			t.Errorf("Expected PlatformMacOS on darwin, got %s", p)
		}
	case "linux":
		// Could be native Linux or WSL
		if p != PlatformLinux && p != PlatformWSL1 && p != PlatformWSL2 {
			t.Errorf("On linux, expected Linux/WSL, got %s", p)
		}
	case "windows":
		if p != PlatformWindows {
			t.Errorf("Expected PlatformWindows on windows, got %s", p)
		}
	}

	// Detection should be cached
	p2 := Detect()
	if p != p2 {
		t.Errorf("Detect() not cached: got %s then %s", p, p2)
	}
}

func TestPlatformString(t *testing.T) {
	tests := []struct {
		platform Platform
		expected string
	}{
		{PlatformMacOS, "macOS"},
		{PlatformLinux, "Linux"},
		{PlatformWSL1, "WSL1"},
		{PlatformWSL2, "WSL2"},
		{PlatformWindows, "Windows"},
		{PlatformUnknown, "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.platform.String(); got != tt.expected {
			t.Errorf("Platform(%s).String() = %s, want %s", tt.platform, got, tt.expected)
		}
	}
}

func TestWatchWarning(t *testing.T) {
	mounts := `sysfs /sys sysfs rw,nosuid 0 0
/dev/sda2 / ext4 rw,relatime 0 0
/dev/sda3 /home ext4 rw,relatime 0 0
C:\ /mnt/c 9p rw,dirsync,aname=drvfs 0 0
fileserver:/export /mnt/nfs nfs4 rw,relatime 0 0
//nas/share /mnt/share cifs rw,relatime 0 0
user@host:/data /mnt/remote fuse.sshfs rw,nosuid 0 0
malformed-line
`

	tests := []struct {
		name     string
		path     string
		wantWarn bool
	}{
		{"ext4 root", "/etc/zsh/zshrc", false},
		{"ext4 home", "/home/user/.zsh_history", false},
		{"9p windows drive", "/mnt/c/Users/user/.zsh_history", true},
		{"nfs mount", "/mnt/nfs/home/.zsh_history", true},
		{"cifs mount", "/mnt/share/.zsh_history", true},
		{"sshfs mount", "/mnt/remote/.zsh_history", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warn := watchWarning(tt.path, mounts)
			if tt.wantWarn && warn == "" {
				t.Errorf("watchWarning(%q) = empty, want warning", tt.path)
			}
			if !tt.wantWarn && warn != "" {
				t.Errorf("watchWarning(%q) = %q, want empty", tt.path, warn)
			}
		})
	}
}

func TestWatchWarningLongestMatchWins(t *testing.T) {
	// /mnt/c is 9p but the deeper /mnt/c/ext mount is ext4
	mounts := `C:\ /mnt/c 9p rw 0 0
/dev/sdb1 /mnt/c/ext ext4 rw 0 0
`

	if warn := watchWarning("/mnt/c/ext/.zsh_history", mounts); warn != "" {
		t.Errorf("watchWarning on deeper ext4 mount = %q, want empty", warn)
	}
	if warn := watchWarning("/mnt/c/Users/.zsh_history", mounts); warn == "" {
		t.Error("watchWarning on 9p mount = empty, want warning")
	}
}

func TestWatchWarningEmptyMounts(t *testing.T) {
	if warn := watchWarning("/home/user/.zsh_history", ""); warn != "" {
		t.Errorf("watchWarning with no mounts = %q, want empty", warn)
	}
}

func TestCheckFsnotifySupportTempDir(t *testing.T) {
	// Temp dirs live on tmpfs or a local filesystem in test environments
	if warn := CheckFsnotifySupport(t.TempDir()); warn != "" {
		t.Errorf("CheckFsnotifySupport(TempDir) = %q, want empty", warn)
	}
}
