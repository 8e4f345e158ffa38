package vfs

// A DirectoryTable maps Name to *File for one directory File's payload. Iteration
// order is insertion order, not sorted, matching "stable insertion order" and
// a general preference for slices over maps where order is observable.
//
// Every DirectoryTable always carries the two reserved entries "." (itself) and ".."
// (its parent, or itself for the tree root) — callers never insert or remove them
// directly; newDirectoryTable and reparent manage them.
//
// Grounded on avfs/avfs's dirNode.childs map[string]node, generalized to preserve
// insertion order (a plain Go map does not) since directory listings must come back
// in the order entries were added.
type DirectoryTable struct {
	self   *File
	parent *File
	order  []Name
	byKey  map[string]*File
}

// newDirectoryTable creates a table for self, parented under parent. For the tree
// root, parent should be self.
func newDirectoryTable(self, parent *File) *DirectoryTable {
	return &DirectoryTable{
		self:   self,
		parent: parent,
		order:  make([]Name, 0, 4),
		byKey:  make(map[string]*File),
	}
}

// Get returns the File bound to name, or nil if no entry exists. "." and ".." always
// resolve without an explicit entry.
func (t *DirectoryTable) Get(name Name) *File {
	if name.IsSelf() {
		return t.self
	}
	if name.IsParent() {
		return t.parent
	}
	return t.byKey[name.Key()]
}

// Add binds name to file. It returns *FileExistsError if name is already bound, or if
// name is "." or "..".
func (t *DirectoryTable) Add(name Name, file *File) error {
	if name.IsDotEntry() {
		return newFileExists(name.String())
	}
	if _, ok := t.byKey[name.Key()]; ok {
		return newFileExists(name.String())
	}
	t.byKey[name.Key()] = file
	t.order = append(t.order, name)
	file.incLink()
	if file.kind == KindDirectory {
		t.self.incLink() // new subdirectory's ".." entry counts against this directory's link count
	}
	return nil
}

// Remove unbinds name, decrementing the bound File's link count. It returns
// *NoSuchFileError if name is not bound, or *UnsupportedError if name is "." or "..".
func (t *DirectoryTable) Remove(name Name) error {
	if name.IsDotEntry() {
		return newUnsupported("cannot remove . or ..")
	}
	file, ok := t.byKey[name.Key()]
	if !ok {
		return newNoSuchFile(name.String())
	}
	delete(t.byKey, name.Key())
	for i, n := range t.order {
		if n.Equal(name) {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	file.decLink()
	if file.kind == KindDirectory {
		t.self.decLink()
	}
	return nil
}

// Rebind atomically replaces the File bound to an existing name, used by move-replace
// to swap a target entry without a separate Remove+Add. It returns *NoSuchFileError if name is not currently bound.
func (t *DirectoryTable) Rebind(name Name, file *File) error {
	old, ok := t.byKey[name.Key()]
	if !ok {
		return newNoSuchFile(name.String())
	}
	old.decLink()
	if old.kind == KindDirectory {
		t.self.decLink()
	}
	t.byKey[name.Key()] = file
	file.incLink()
	if file.kind == KindDirectory {
		t.self.incLink()
	}
	return nil
}

// Names returns the ordinary entry names in insertion order, excluding "." and "..".
func (t *DirectoryTable) Names() []Name {
	return append([]Name{}, t.order...)
}

// Len returns the number of ordinary entries, excluding "." and "..".
func (t *DirectoryTable) Len() int {
	return len(t.order)
}

// IsEmpty reports whether this directory has no ordinary entries.
func (t *DirectoryTable) IsEmpty() bool {
	return len(t.order) == 0
}

// reparent updates the ".." binding after a move relocates this directory under a new
// parent.
func (t *DirectoryTable) reparent(newParent *File) {
	t.parent = newParent
}
