package vfs

import (
	"testing"
	"time"
)

func TestWatchService_DetectsCreateAndDelete(t *testing.T) {
	fsys, err := NewUnixLike(WithWatchPollInterval(20 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer fsys.Close()

	dir := fsys.Path("/work")
	key, err := fsys.Watch(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := fsys.CreateFile(fsys.Path("/work/new.txt")); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	var events []Event
	for len(events) == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for a create event")
		case <-time.After(10 * time.Millisecond):
			events = append(events, key.Events()...)
		}
	}

	found := false
	for _, e := range events {
		if e.Kind == EntryCreated && e.Name.String() == "new.txt" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an EntryCreated event for new.txt, got %v", events)
	}
}

func TestWatchKey_CancelInvalidates(t *testing.T) {
	fsys, err := NewUnixLike(WithWatchPollInterval(20 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer fsys.Close()

	key, err := fsys.Watch(fsys.Path("/work"))
	if err != nil {
		t.Fatal(err)
	}
	if !key.IsValid() {
		t.Fatal("expected freshly registered key to be valid")
	}
	key.Cancel()
	if key.IsValid() {
		t.Fatal("expected cancelled key to be invalid")
	}
}
