package mailer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStageAttachment(t *testing.T) {
	dir := t.TempDir()

	path, err := StageAttachment(dir, "../../etc/notes.txt", strings.NewReader("staged"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Dir(path) != filepath.Clean(dir) {
		t.Errorf("expected file in %s, got %s", dir, path)
	}
	if !strings.HasSuffix(path, "-notes.txt") {
		t.Errorf("expected base name kept, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	if string(data) != "staged" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestStageAttachment_UniqueNames(t *testing.T) {
	dir := t.TempDir()

	a, err := StageAttachment(dir, "same.txt", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := StageAttachment(dir, "same.txt", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a == b {
		t.Errorf("expected distinct paths, got %s twice", a)
	}
}

func TestStageAttachment_EmptyName(t *testing.T) {
	path, err := StageAttachment(t.TempDir(), "", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, "-attachment") {
		t.Errorf("expected fallback name, got %s", path)
	}
}

func TestStageAttachment_MissingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	if _, err := StageAttachment(missing, "a.txt", strings.NewReader("x")); err == nil {
		t.Error("expected error for missing directory")
	}
}
