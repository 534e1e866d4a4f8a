package fileutils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomicSameDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.jsonl")

	if err := WriteFileAtomicSameDir(path, []byte("line one\n"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomicSameDir: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// Payload already ends with a newline; nothing extra appended.
	if string(b) != "line one\n" {
		t.Fatalf("content=%q", string(b))
	}

	if err := WriteFileAtomicSameDir(path, []byte("no trailing newline"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomicSameDir: %v", err)
	}
	b, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "no trailing newline\n" {
		t.Fatalf("content=%q, want newline appended", string(b))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries=%d, want no leftover temp files", len(entries))
	}
}

func TestWriteJSONFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := WriteJSONFileAtomic(path, map[string]int{"a": 1}, true); err != nil {
		t.Fatalf("WriteJSONFileAtomic: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "{\n  \"a\": 1\n}\n" {
		t.Fatalf("content=%q", string(b))
	}
}

func TestCopyFileIfExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "copies", "dst.txt")

	copied, err := CopyFileIfExists(filepath.Join(dir, "missing.txt"), dst, false)
	if err != nil || copied {
		t.Fatalf("copied=%v err=%v, want false/nil for missing source", copied, err)
	}

	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	copied, err = CopyFileIfExists(src, dst, false)
	if err != nil || !copied {
		t.Fatalf("copied=%v err=%v, want true/nil", copied, err)
	}

	// No overwrite: second copy is a no-op.
	if err := os.WriteFile(src, []byte("changed"), 0o644); err != nil {
		t.Fatalf("rewrite src: %v", err)
	}
	copied, err = CopyFileIfExists(src, dst, false)
	if err != nil || copied {
		t.Fatalf("copied=%v err=%v, want false/nil without overwrite", copied, err)
	}

	copied, err = CopyFileIfExists(src, dst, true)
	if err != nil || !copied {
		t.Fatalf("copied=%v err=%v, want true/nil with overwrite", copied, err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(b) != "changed\n" {
		t.Fatalf("dst=%q", string(b))
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("  hello  ", 0); got != "hello" {
		t.Fatalf("got=%q", got)
	}
	if got := Truncate("abcdef", 3); got != "abc…" {
		t.Fatalf("got=%q", got)
	}
}

func TestFlattenNewlines(t *testing.T) {
	t.Parallel()

	if got := FlattenNewlines("a\r\nb\rc\nd"); got != `a\nb\nc\nd` {
		t.Fatalf("got=%q", got)
	}
}

func TestDecodeModelJSON(t *testing.T) {
	t.Parallel()

	var v struct {
		Reply string `json:"reply"`
	}
	if err := DecodeModelJSON(`{"reply":"ok"}`, &v); err != nil {
		t.Fatalf("DecodeModelJSON: %v", err)
	}
	if v.Reply != "ok" {
		t.Fatalf("Reply=%q", v.Reply)
	}

	if err := DecodeModelJSON("Sure! Here it is: {\"reply\":\"wrapped\"} hope that helps", &v); err != nil {
		t.Fatalf("DecodeModelJSON wrapped: %v", err)
	}
	if v.Reply != "wrapped" {
		t.Fatalf("Reply=%q", v.Reply)
	}

	if err := DecodeModelJSON("no json at all", &v); err == nil {
		t.Fatalf("expected error for non-JSON output")
	}
}
