package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateFilePath(t *testing.T) {
	baseDir := t.TempDir()

	tests := []struct {
		name      string
		target    string
		shouldErr bool
	}{
		{"file in base", filepath.Join(baseDir, ".iisctl.yaml"), false},
		{"nested file", filepath.Join(baseDir, "conf", "iisctl.yaml"), false},
		{"base itself", baseDir, false},
		{"parent escape", filepath.Join(baseDir, "..", "outside.yaml"), true},
		{"deep escape", filepath.Join(baseDir, "a", "..", "..", "..", "etc", "passwd"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.target, baseDir)
			if tt.shouldErr && err == nil {
				t.Errorf("ValidateFilePath(%q) expected error", tt.target)
			}
			if !tt.shouldErr && err != nil {
				t.Errorf("ValidateFilePath(%q) unexpected error: %v", tt.target, err)
			}
		})
	}
}

func TestContainsUnsafePath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"empty", "", false},
		{"absolute", "/var/log/iisctl", false},
		{"home based", filepath.Join(home, "logs"), false},
		{"windows path", "C:\\Users\\ops\\AppData\\Local\\iisctl\\logs", false},
		{"dotted name", "/var/log/iisctl..old", false},
		{"unix traversal", "/var/log/../../etc", true},
		{"windows traversal", "C:\\logs\\..\\Windows", true},
		{"bare parent", "..", true},
		{"null byte", "/var/log/\x00iisctl", true},
		{"newline", "/var/log/iisctl\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsUnsafePath(tt.path); got != tt.expected {
				t.Errorf("ContainsUnsafePath(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestContainsDirectoryTraversal(t *testing.T) {
	tests := []struct {
		relPath  string
		expected bool
	}{
		{"config.yaml", false},
		{"dir/config.yaml", false},
		{"..", true},
		{"../config.yaml", true},
		{"..\\config.yaml", true},
		{"dir/../../x", true},
		{"dir/..", true},
		{"dir\\..", true},
	}

	for _, tt := range tests {
		t.Run(tt.relPath, func(t *testing.T) {
			if got := containsDirectoryTraversal(tt.relPath); got != tt.expected {
				t.Errorf("containsDirectoryTraversal(%q) = %v, want %v", tt.relPath, got, tt.expected)
			}
		})
	}
}
