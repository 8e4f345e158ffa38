package vfs

import (
	"sync"
	"time"
)

// A FileTree owns every File reachable from its root, the id allocator, the shared
// block allocator, and the single exclusive lock that serializes every structural
// mutation: create, delete, move, and link all take this lock for their entire
// duration. Content reads/writes on an already-open regular file use the File's own
// contentLock instead and do not take the tree lock, so one slow read doesn't stall
// unrelated directory operations.
//
// Grounded on vfslocal.go, which held a single root DataProvider per local mount;
// generalized here into an explicit tree object that makes the tree, its lock, and
// its allocators first-class parts of the type rather than an implicit detail of a
// provider implementation.
type FileTree struct {
	mu sync.Mutex

	pt   PathType
	cfg  Config
	root *File

	nextID uint64
	blocks *blockPool

	maxSymlinkDepth int

	watchRegistry map[uint64][]*WatchKey
}

func newFileTree(pt PathType, cfg Config) *FileTree {
	now := time.Now()
	t := &FileTree{
		pt:              pt,
		cfg:             cfg,
		nextID:          1,
		blocks:          newBlockPool(cfg.BlockSize, cfg.MaxCacheBytes),
		maxSymlinkDepth: cfg.MaxSymlinkDepth,
		watchRegistry:   make(map[uint64][]*WatchKey),
	}
	root := newFile(t.allocID(), KindDirectory, now)
	root.dir = newDirectoryTable(root, root)
	root.incLink() // "." entry
	root.incLink() // ".." entry, self-pointing since root has no parent
	t.root = root
	return t
}

func (t *FileTree) allocID() uint64 {
	id := t.nextID
	t.nextID++
	return id
}

// Lock acquires the exclusive tree-wide structural lock.
func (t *FileTree) Lock() { t.mu.Lock() }

// Unlock releases the exclusive tree-wide structural lock.
func (t *FileTree) Unlock() { t.mu.Unlock() }

// Root returns the root directory File.
func (t *FileTree) Root() *File { return t.root }

// RootPath returns the absolute root Path ("/" for Unix, "C:\" for Windows).
func (t *FileTree) RootPath() Path {
	root, _, ok := t.pt.ParseRoot(t.cfg.WorkingDirectory)
	if !ok {
		root, _, _ = t.pt.ParseRoot(t.pt.Separator())
	}
	return pathOf(t.pt, root, true, nil)
}

// newRegularFile allocates a fresh, empty regular File.
func (t *FileTree) newRegularFile() *File {
	f := newFile(t.allocID(), KindRegular, time.Now())
	f.store = NewByteStore(t.blocks)
	return f
}

// newDirectoryFile allocates a fresh, empty directory File parented under parent.
func (t *FileTree) newDirectoryFile(parent *File) *File {
	f := newFile(t.allocID(), KindDirectory, time.Now())
	f.dir = newDirectoryTable(f, parent)
	f.incLink() // its own "." entry
	return f
}

// newSymlinkFile allocates a fresh symbolic-link File targeting target.
func (t *FileTree) newSymlinkFile(target Path) *File {
	f := newFile(t.allocID(), KindSymbolicLink, time.Now())
	f.symlink = target
	return f
}

// releaseIfOrphaned releases f's storage once it is no longer reachable from any
// directory entry and no open channel references it. Regular files release their
// ByteStore blocks back to the pool; directories and symlinks hold nothing else to
// release.
func (t *FileTree) releaseIfOrphaned(f *File) {
	if f.LinkCount() > 0 || f.openHandleCount() > 0 {
		return
	}
	if f.kind == KindRegular && f.store != nil {
		f.store.release()
	}
}
