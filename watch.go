package vfs

import (
	"sync"
	"time"
)

// EventKind classifies a single directory-change notification.
type EventKind int

const (
	// EntryCreated reports a new name appearing in a watched directory.
	EntryCreated EventKind = iota
	// EntryDeleted reports a name disappearing from a watched directory.
	EntryDeleted
	// EntryModified reports an existing entry whose File's modification time advanced
	// (an in-place write) or whose File identity changed (a move-replace or
	// copy-replace landed on that name), without the name itself appearing or
	// disappearing.
	EntryModified
)

func (k EventKind) String() string {
	switch k {
	case EntryCreated:
		return "created"
	case EntryDeleted:
		return "deleted"
	case EntryModified:
		return "modified"
	default:
		return "unknown"
	}
}

// An Event is one queued change, the Name it happened to and nothing else — callers
// re-resolve the Name against the watched Path if they need the current File.
type Event struct {
	Kind EventKind
	Name Name
}

// defaultPollPeriod is how often the WatchService re-scans watched directories when
// Config.WatchPollInterval is zero.
const defaultPollPeriod = 5 * time.Second

// A WatchKey represents one directory's subscription. It queues events until a
// consumer calls Events to drain them, and is invalidated by Cancel or by the
// WatchService closing.
//
// Grounded on cancelable.go's Cancelable token, generalized from a single
// cancel-only flag into the queue-plus-cancel token java.nio.file.WatchKey is, since a
// watch notification carries queued events rather than a bare boolean.
type WatchKey struct {
	service *WatchService
	dir     *File
	path    Path

	mu     sync.Mutex
	events []Event
	valid  bool
}

// Path returns the directory Path this key watches.
func (k *WatchKey) Path() Path { return k.path }

// Events drains and returns every event queued since the last call to Events.
func (k *WatchKey) Events() []Event {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := k.events
	k.events = nil
	return out
}

// IsValid reports whether this key is still registered with its WatchService.
func (k *WatchKey) IsValid() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.valid
}

// Cancel unregisters this key. Already-queued events remain available via Events.
func (k *WatchKey) Cancel() {
	k.service.cancel(k)
}

func (k *WatchKey) push(evt Event) {
	k.mu.Lock()
	k.events = append(k.events, evt)
	k.mu.Unlock()
}

// A WatchService polls its FileTree's directories on a fixed period and reports
// created/deleted/modified entries through each directory's WatchKey. It has
// no inotify-style OS hook to ride on — this package's tree lives entirely in memory —
// so diffing successive snapshots is the only option, unlike a real filesystem
// watcher.
//
// Grounded on router.go's polling loop structure (a background goroutine
// driven by a ticker, stoppable via a channel close), redirected from routing table
// refresh onto directory-snapshot diffing.
type WatchService struct {
	tree   *FileTree
	period time.Duration

	mu     sync.Mutex
	keys   map[*File]*WatchKey
	closed bool
	stop   chan struct{}
}

func newWatchService(tree *FileTree, period time.Duration) *WatchService {
	if period <= 0 {
		period = defaultPollPeriod
	}
	s := &WatchService{
		tree:   tree,
		period: period,
		keys:   make(map[*File]*WatchKey),
		stop:   make(chan struct{}),
	}
	go s.pollLoop()
	return s
}

// Register starts watching dir (identified by path, for event/debugging purposes) and
// returns its WatchKey. Registering an already-watched directory again replaces its
// prior key, which becomes invalid.
func (s *WatchService) Register(dir *File, path Path) (*WatchKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, newClosed("watch service")
	}
	if old, ok := s.keys[dir]; ok {
		old.mu.Lock()
		old.valid = false
		old.mu.Unlock()
	}
	key := &WatchKey{service: s, dir: dir, path: path, valid: true}
	s.keys[dir] = key
	return key, nil
}

func (s *WatchService) cancel(key *WatchKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key.mu.Lock()
	key.valid = false
	key.mu.Unlock()
	if s.keys[key.dir] == key {
		delete(s.keys, key.dir)
	}
}

// Close stops the polling goroutine and invalidates every outstanding key.
func (s *WatchService) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for _, k := range s.keys {
		k.mu.Lock()
		k.valid = false
		k.mu.Unlock()
	}
	s.keys = make(map[*File]*WatchKey)
	s.mu.Unlock()
	close(s.stop)
	return nil
}

// dirSnapshot is one directory's state as of the last poll: its entries, each paired
// with the File it named and that File's modification time at the time of the
// snapshot, so the next poll can tell apart a name disappearing from a name whose
// File simply changed in place.
type dirSnapshot struct {
	names []Name
	files map[string]*File
	mtime map[string]time.Time
}

func (s *WatchService) pollLoop() {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	snapshots := make(map[*File]dirSnapshot)
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.pollOnce(snapshots)
		}
	}
}

func (s *WatchService) pollOnce(snapshots map[*File]dirSnapshot) {
	s.mu.Lock()
	keys := make([]*WatchKey, 0, len(s.keys))
	for _, k := range s.keys {
		keys = append(keys, k)
	}
	s.mu.Unlock()

	for _, key := range keys {
		s.tree.Lock()
		if key.dir.Kind() != KindDirectory {
			s.tree.Unlock()
			continue
		}
		table := key.dir.Directory()
		names := table.Names()
		current := dirSnapshot{
			names: names,
			files: make(map[string]*File, len(names)),
			mtime: make(map[string]time.Time, len(names)),
		}
		for _, n := range names {
			f := table.Get(n)
			current.files[n.Key()] = f
			_, modified, _ := f.Times()
			current.mtime[n.Key()] = modified
		}
		s.tree.Unlock()

		diffSnapshots(snapshots[key.dir], current, key)
		snapshots[key.dir] = current
	}
}

// diffSnapshots compares prev to current, pushing EntryCreated for names that
// appeared, EntryDeleted for names that disappeared, and EntryModified for names
// present in both snapshots whose underlying File's modification time advanced (an
// in-place content write) or whose File identity changed (a move-replace or
// copy-replace landed on that name).
func diffSnapshots(prev, current dirSnapshot, key *WatchKey) {
	prevSet := make(map[string]bool, len(prev.names))
	for _, n := range prev.names {
		prevSet[n.Key()] = true
	}
	currentSet := make(map[string]bool, len(current.names))
	for _, n := range current.names {
		currentSet[n.Key()] = true
	}

	for _, n := range current.names {
		k := n.Key()
		if !prevSet[k] {
			key.push(Event{Kind: EntryCreated, Name: n})
			continue
		}
		if prev.files[k] != current.files[k] || current.mtime[k].After(prev.mtime[k]) {
			key.push(Event{Kind: EntryModified, Name: n})
		}
	}
	for _, n := range prev.names {
		if !currentSet[n.Key()] {
			key.push(Event{Kind: EntryDeleted, Name: n})
		}
	}
}
