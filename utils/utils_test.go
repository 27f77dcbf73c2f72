package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateRandomString(t *testing.T) {
	const length = 42
	t.Run("RandomStringLength", func(t *testing.T) {
		if got := GenerateRandomString(length); len(got) != length {
			t.Errorf("GenerateRandomString() length = %v, want %v", got, length)
		}
	})
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "exists")
	if err := os.WriteFile(file, []byte("x"), 0o640); err != nil {
		t.Fatal(err)
	}

	if ok, _ := FileExists(file); !ok {
		t.Errorf("FileExists(%q) = false, want true", file)
	}
	if ok, _ := FileExists(filepath.Join(dir, "missing")); ok {
		t.Error("FileExists() = true for missing file")
	}
	if _, err := FileExists(dir); err == nil {
		t.Error("FileExists() expected error for directory")
	}
}
