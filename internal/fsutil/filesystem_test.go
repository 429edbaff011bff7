package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_WriteReadExists(t *testing.T) {
	fsys := OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "out", "nested")

	if err := fsys.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	path := filepath.Join(dir, "scene.json")
	if err := fsys.WriteFile(path, []byte(`{"objects":[]}`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if !fsys.Exists(path) {
		t.Error("expected written file to exist")
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"objects":[]}` {
		t.Errorf("ReadFile = %q", data)
	}
	if fsys.Exists(filepath.Join(dir, "missing")) {
		t.Error("missing file reported as existing")
	}
}

func TestMemoryFileSystem_WriteRequiresParent(t *testing.T) {
	m := NewMemoryFileSystem()

	err := m.WriteFile("out/room.fds", []byte("&TAIL /"), 0644)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrNotExist writing without parent, got %v", err)
	}

	if err := m.MkdirAll("out", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := m.WriteFile("out/room.fds", []byte("&TAIL /"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := m.ReadFile("out/./room.fds")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "&TAIL /" {
		t.Errorf("ReadFile = %q", data)
	}
}

func TestMemoryFileSystem_DataIsolation(t *testing.T) {
	m := NewMemoryFileSystem()
	src := []byte("abc")
	if err := m.WriteFile("a.txt", src, 0644); err != nil {
		t.Fatal(err)
	}
	src[0] = 'z'

	got, _ := m.ReadFile("a.txt")
	if string(got) != "abc" {
		t.Errorf("stored data mutated through caller slice: %q", got)
	}
	got[1] = 'z'
	again, _ := m.ReadFile("a.txt")
	if string(again) != "abc" {
		t.Errorf("stored data mutated through returned slice: %q", again)
	}
}

func TestMemoryFileSystem_MkdirAllCreatesParents(t *testing.T) {
	m := NewMemoryFileSystem()
	if err := m.MkdirAll("runs/2025/a", 0755); err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{"runs", "runs/2025", "runs/2025/a"} {
		if !m.Exists(d) {
			t.Errorf("expected %s to exist", d)
		}
	}
}

func TestMemoryFileSystem_ReadNonExistent(t *testing.T) {
	m := NewMemoryFileSystem()
	if _, err := m.ReadFile("nope"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestWriteAll(t *testing.T) {
	m := NewMemoryFileSystem()
	err := WriteAll(m, "out", map[string][]byte{
		"room_simulation.fds":  []byte("&TAIL /\n"),
		"room_simulation.json": []byte("{}"),
	})
	if err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}

	files := m.Files("out")
	want := []string{"out/room_simulation.fds", "out/room_simulation.json"}
	if len(files) != len(want) {
		t.Fatalf("Files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("Files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestWriteAll_RejectsNestedNames(t *testing.T) {
	m := NewMemoryFileSystem()
	err := WriteAll(m, "out", map[string][]byte{"../escape.txt": nil})
	if err == nil {
		t.Fatal("expected error for artifact name with directory component")
	}
}
