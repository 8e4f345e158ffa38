package vfs

import (
	"testing"
	"time"
)

// TestScenario_UnixTree exercises the literal scenario 1: nested mkdir, a write, and a
// read-back that must match both the bytes and the reported size.
func TestScenario_UnixTree(t *testing.T) {
	fsys := newTestFS(t)
	if err := fsys.CreateDirectory(fsys.Path("/a")); err != nil {
		t.Fatal(err)
	}
	if err := fsys.CreateDirectory(fsys.Path("/a/b")); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(fsys, fsys.Path("/a/b/c.txt"), []byte("hello")); err != nil {
		t.Fatal(err)
	}

	data, err := ReadFile(fsys, fsys.Path("/a/b/c.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected hello, got %q", data)
	}

	attrs, err := fsys.ReadAttributes(fsys.Path("/a/b/c.txt"), "basic")
	if err != nil {
		t.Fatal(err)
	}
	if attrs["size"].(int64) != 5 {
		t.Fatalf("expected size 5, got %v", attrs["size"])
	}
}

// TestScenario_UnixSymlinkChain exercises scenario 2: a working symlink chain plus a
// self-referential one that must fail with TooManyLinks.
func TestScenario_UnixSymlinkChain(t *testing.T) {
	fsys := newTestFS(t)
	fsys.CreateDirectory(fsys.Path("/x"))
	WriteFile(fsys, fsys.Path("/x/target"), []byte("T"))

	if err := fsys.CreateSymbolicLink(fsys.Path("/link"), fsys.Path("/x/target")); err != nil {
		t.Fatal(err)
	}
	data, err := ReadFile(fsys, fsys.Path("/link"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "T" {
		t.Fatalf("expected T, got %q", data)
	}

	if err := fsys.CreateSymbolicLink(fsys.Path("/loop"), fsys.Path("/loop")); err != nil {
		t.Fatal(err)
	}
	_, err = ReadFile(fsys, fsys.Path("/loop"))
	if _, ok := err.(*TooManyLinksError); !ok {
		t.Fatalf("expected *TooManyLinksError, got %v", err)
	}
}

// TestScenario_HardLinkAccounting exercises scenario 3: nlink bookkeeping across a
// hard link and a subsequent delete of the original name.
func TestScenario_HardLinkAccounting(t *testing.T) {
	fsys := newTestFS(t)
	WriteFile(fsys, fsys.Path("/work/a"), []byte("A"))
	if err := fsys.CreateLink(fsys.Path("/work/b"), fsys.Path("/work/a")); err != nil {
		t.Fatal(err)
	}

	n, err := fsys.LinkCount(fsys.Path("/work/a"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected nlink 2, got %d", n)
	}

	if err := fsys.Delete(fsys.Path("/work/a")); err != nil {
		t.Fatal(err)
	}
	n, err = fsys.LinkCount(fsys.Path("/work/b"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected nlink 1 after deleting the other name, got %d", n)
	}

	data, err := ReadFile(fsys, fsys.Path("/work/b"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "A" {
		t.Fatalf("expected A, got %q", data)
	}
}

// TestScenario_MovePreservesID exercises scenario 4: a move must preserve the File's
// identity and content, not just its name.
func TestScenario_MovePreservesID(t *testing.T) {
	fsys := newTestFS(t)
	WriteFile(fsys, fsys.Path("/work/p"), []byte("P"))

	id1, err := fsys.FileID(fsys.Path("/work/p"))
	if err != nil {
		t.Fatal(err)
	}
	if err := fsys.Move(fsys.Path("/work/p"), fsys.Path("/work/q")); err != nil {
		t.Fatal(err)
	}
	id2, err := fsys.FileID(fsys.Path("/work/q"))
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("expected identity to survive move, got %d -> %d", id1, id2)
	}
	data, err := ReadFile(fsys, fsys.Path("/work/q"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "P" {
		t.Fatalf("expected P, got %q", data)
	}
}

// TestScenario_WindowsCaseInsensitiveLookup exercises scenario 5: Windows path
// comparison must be ASCII case-insensitive, including through a "." /".." detour.
func TestScenario_WindowsCaseInsensitiveLookup(t *testing.T) {
	fsys, err := NewWindowsLike()
	if err != nil {
		t.Fatal(err)
	}
	if err := fsys.CreateDirectory(fsys.Path(`C:\Foo`)); err != nil {
		t.Fatal(err)
	}

	if !fsys.Exists(fsys.Path(`C:\foo`)) {
		t.Fatal("expected case-insensitive lookup to find C:\\foo")
	}
	if !fsys.Exists(fsys.Path(`C:\FOO\..\foo`)) {
		t.Fatal("expected case-insensitive lookup through .. to find C:\\FOO\\..\\foo")
	}
}

// TestScenario_WatchSequence exercises scenario 6: a create/modify/delete sequence on
// one watched directory must surface as an ordered event sequence within roughly one
// poll cycle.
func TestScenario_WatchSequence(t *testing.T) {
	fsys, err := NewUnixLike(WithWatchPollInterval(15 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer fsys.Close()

	if err := fsys.CreateDirectory(fsys.Path("/work/d")); err != nil {
		t.Fatal(err)
	}
	key, err := fsys.Watch(fsys.Path("/work/d"))
	if err != nil {
		t.Fatal(err)
	}

	x := fsys.Path("/work/d/x")
	if err := fsys.CreateFile(x); err != nil {
		t.Fatal(err)
	}
	time.Sleep(40 * time.Millisecond)
	WriteFile(fsys, x, []byte("changed"))
	time.Sleep(40 * time.Millisecond)
	if err := fsys.Delete(x); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	var all []Event
	for {
		all = append(all, key.Events()...)
		hasCreate, hasDelete := false, false
		for _, e := range all {
			if e.Kind == EntryCreated {
				hasCreate = true
			}
			if e.Kind == EntryDeleted {
				hasDelete = true
			}
		}
		if hasCreate && hasDelete {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for create+delete events, got %v", all)
		case <-time.After(10 * time.Millisecond):
		}
	}

	var seq []EventKind
	for _, e := range all {
		if e.Name.String() == "x" {
			seq = append(seq, e.Kind)
		}
	}
	want := []EventKind{EntryCreated, EntryModified, EntryDeleted}
	if len(seq) != len(want) {
		t.Fatalf("expected event sequence %v for x, got %v", want, seq)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("expected event sequence %v for x, got %v", want, seq)
		}
	}
}
