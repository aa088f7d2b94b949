package hasher

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSumStable(t *testing.T) {
	a := Sum([]byte("wallpaper"), 0)
	b := Sum([]byte("wallpaper"), 0)
	if a != b || len(a) != 16 {
		t.Fatalf("unstable or wrong length: %q %q", a, b)
	}
	if Sum([]byte("wallpaper"), 8) != a[:8] {
		t.Error("truncation should keep the prefix")
	}
	if Sum([]byte("other"), 0) == a {
		t.Error("different inputs hashed equal")
	}
}

func TestFileMatchesSum(t *testing.T) {
	data := []byte("some image bytes")
	path := filepath.Join(t.TempDir(), "a.jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := File(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != Sum(data, Len) {
		t.Errorf("File = %s, Sum = %s", got, Sum(data, Len))
	}
	if _, err := File(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
