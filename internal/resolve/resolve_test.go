package resolve

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveFound(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, FilePathSizeForTest)
	res, err := Resolve(dir, []byte("/a.txt"), buf)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Code != Found {
		t.Fatalf("Code = %v, want Found", res.Code)
	}
	if res.Size != 5 {
		t.Errorf("Size = %d, want 5", res.Size)
	}
	if string(res.Mapped) != "hello" {
		t.Errorf("Mapped = %q, want %q", res.Mapped, "hello")
	}
	if err := Release(res.Mapped); err != nil {
		t.Errorf("Release: %v", err)
	}
}

func TestResolveNotFound(t *testing.T) {
	dir := t.TempDir()
	buf := make([]byte, FilePathSizeForTest)
	res, err := Resolve(dir, []byte("/missing.txt"), buf)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Code != NotFound {
		t.Fatalf("Code = %v, want NotFound", res.Code)
	}
}

func TestResolveForbiddenWhenNotWorldReadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secret.txt")
	if err := os.WriteFile(path, []byte("shh"), 0600); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, FilePathSizeForTest)
	res, err := Resolve(dir, []byte("/secret.txt"), buf)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Code != Forbidden {
		t.Fatalf("Code = %v, want Forbidden", res.Code)
	}
}

func TestResolveDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, FilePathSizeForTest)
	res, err := Resolve(dir, []byte("/sub"), buf)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Code != IsDirectory {
		t.Fatalf("Code = %v, want IsDirectory", res.Code)
	}
}

// TestResolveForbiddenDirectoryChecksReadableFirst is spec.md §4.4's
// ordering: a directory with the others-read bit clear must resolve to
// Forbidden (403), not IsDirectory (400), matching do_request's
// S_IROTH-before-S_ISDIR check.
func TestResolveForbiddenDirectoryChecksReadableFirst(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0700); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, FilePathSizeForTest)
	res, err := Resolve(dir, []byte("/sub"), buf)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Code != Forbidden {
		t.Fatalf("Code = %v, want Forbidden", res.Code)
	}
}

func TestReleaseNilIsNoop(t *testing.T) {
	if err := Release(nil); err != nil {
		t.Errorf("Release(nil): %v, want nil error", err)
	}
}

func TestSafeResolveRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	buf := make([]byte, FilePathSizeForTest)
	res, err := SafeResolve(dir, []byte("/../etc/passwd"), buf)
	if err != nil {
		t.Fatalf("SafeResolve: %v", err)
	}
	if res.Code != Forbidden {
		t.Fatalf("Code = %v, want Forbidden", res.Code)
	}
}

func TestSafeResolveAllowsOrdinaryPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, FilePathSizeForTest)
	res, err := SafeResolve(dir, []byte("/a.txt"), buf)
	if err != nil {
		t.Fatalf("SafeResolve: %v", err)
	}
	if res.Code != Found {
		t.Fatalf("Code = %v, want Found", res.Code)
	}
	Release(res.Mapped)
}

// FilePathSizeForTest mirrors slot.FilePathSize without importing the
// slot package (which would create an import cycle, since slot imports
// resolve).
const FilePathSizeForTest = 200
