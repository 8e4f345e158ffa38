package vfs

import "time"

// The OperationsLayer: every verb that changes the tree's shape takes the tree
// lock for its entire duration, so each of these methods is atomic with respect to
// every other structural operation. Content I/O on an already-open FileChannel does
// not go through here and does not take the tree lock (see channel.go).
//
// Grounded on filesystem.go/filesystem_batch.go's verb set
// (Mkdir/Remove/Rename/...), generalized from a single DataProvider-backed
// implementation onto the FileTree/File/DirectoryTable model built in file.go,
// dirtable.go, and lookup.go.

// createFile creates a new, empty regular file at path. It returns *FileExistsError
// if an entry already exists there, or *NoSuchFileError if its parent directory does
// not exist.
func (t *FileTree) createFile(wd *File, path Path) (*File, error) {
	t.Lock()
	defer t.Unlock()

	parent, name, err := t.resolveParent(wd, path)
	if err != nil {
		return nil, err
	}
	if parent.Directory().Get(name) != nil {
		return nil, newFileExists(path.String())
	}
	f := t.newRegularFile()
	if err := parent.Directory().Add(name, f); err != nil {
		return nil, err
	}
	parent.touchModified(time.Now())
	return f, nil
}

// createDirectory creates a new, empty directory at path. Same existence/parent rules
// as createFile.
func (t *FileTree) createDirectory(wd *File, path Path) (*File, error) {
	t.Lock()
	defer t.Unlock()

	parent, name, err := t.resolveParent(wd, path)
	if err != nil {
		return nil, err
	}
	if parent.Directory().Get(name) != nil {
		return nil, newFileExists(path.String())
	}
	f := t.newDirectoryFile(parent)
	if err := parent.Directory().Add(name, f); err != nil {
		return nil, err
	}
	parent.touchModified(time.Now())
	return f, nil
}

// createSymbolicLink creates a symbolic link at path pointing at target. target is
// stored verbatim and never validated or resolved or mutated after creation. It
// returns *UnsupportedError if FeatureSymbolicLinks was disabled via WithFeatures.
func (t *FileTree) createSymbolicLink(wd *File, path Path, target Path) (*File, error) {
	if !t.cfg.hasFeature(FeatureSymbolicLinks) {
		return nil, newUnsupported("symbolic links are disabled for this filesystem")
	}

	t.Lock()
	defer t.Unlock()

	parent, name, err := t.resolveParent(wd, path)
	if err != nil {
		return nil, err
	}
	if parent.Directory().Get(name) != nil {
		return nil, newFileExists(path.String())
	}
	f := t.newSymlinkFile(target)
	if err := parent.Directory().Add(name, f); err != nil {
		return nil, err
	}
	parent.touchModified(time.Now())
	return f, nil
}

// createLink adds a second directory entry, newPath, pointing at the same File
// already named by existingPath (a hard link). It returns *UnsupportedError for a
// directory target, since this package follows the usual no-hard-links-to-directories
// rule to keep the tree acyclic, and also *UnsupportedError if FeatureHardLinks was
// disabled via WithFeatures.
func (t *FileTree) createLink(wd *File, newPath, existingPath Path) error {
	if !t.cfg.hasFeature(FeatureHardLinks) {
		return newUnsupported("hard links are disabled for this filesystem")
	}

	t.Lock()
	defer t.Unlock()

	target, _, _, err := t.resolve(wd, existingPath, true)
	if err != nil {
		return err
	}
	if target.Kind() == KindDirectory {
		return newUnsupported("hard links to directories are not allowed")
	}

	parent, name, err := t.resolveParent(wd, newPath)
	if err != nil {
		return err
	}
	if parent.Directory().Get(name) != nil {
		return newFileExists(newPath.String())
	}
	if err := parent.Directory().Add(name, target); err != nil {
		return err
	}
	parent.touchModified(time.Now())
	return nil
}

// deleteEntry removes the directory entry at path. It returns *DirectoryNotEmptyError
// if path names a non-empty directory, or *NoSuchFileError if nothing is there.
func (t *FileTree) deleteEntry(wd *File, path Path) error {
	t.Lock()
	defer t.Unlock()

	parent, name, err := t.resolveParent(wd, path)
	if err != nil {
		return err
	}
	target := parent.Directory().Get(name)
	if target == nil {
		return newNoSuchFile(path.String())
	}
	if target.Kind() == KindDirectory && !target.Directory().IsEmpty() {
		return newDirectoryNotEmpty(path.String())
	}
	if err := parent.Directory().Remove(name); err != nil {
		return err
	}
	parent.touchModified(time.Now())
	t.releaseIfOrphaned(target)
	return nil
}

// move relocates (and optionally renames) the entry at src to dst. If dst already
// exists and replaceExisting is false, it returns *FileExistsError; an existing empty
// directory or existing regular file at dst may be replaced when replaceExisting is
// true, but a non-empty directory at dst always returns *DirectoryNotEmptyError.
func (t *FileTree) move(wd *File, src, dst Path, replaceExisting bool) error {
	t.Lock()
	defer t.Unlock()

	srcParent, srcName, err := t.resolveParent(wd, src)
	if err != nil {
		return err
	}
	moved := srcParent.Directory().Get(srcName)
	if moved == nil {
		return newNoSuchFile(src.String())
	}

	dstParent, dstName, err := t.resolveParent(wd, dst)
	if err != nil {
		return err
	}
	existing := dstParent.Directory().Get(dstName)
	if existing != nil {
		if !replaceExisting {
			return newFileExists(dst.String())
		}
		if existing.Kind() == KindDirectory && !existing.Directory().IsEmpty() {
			return newDirectoryNotEmpty(dst.String())
		}
		if err := dstParent.Directory().Rebind(dstName, moved); err != nil {
			return err
		}
	} else {
		if err := dstParent.Directory().Add(dstName, moved); err != nil {
			return err
		}
	}
	if err := srcParent.Directory().Remove(srcName); err != nil {
		return err
	}
	if moved.Kind() == KindDirectory {
		moved.Directory().reparent(dstParent)
	}

	now := time.Now()
	srcParent.touchModified(now)
	dstParent.touchModified(now)
	if existing != nil {
		t.releaseIfOrphaned(existing)
	}
	return nil
}

// copy duplicates the entry at src to dst as an entirely new File (unlike move, the
// source is left untouched and the two Files are independent afterward). Copying a
// directory duplicates only the directory itself, empty, not its contents — callers
// that want a recursive copy call copy once per entry via Walk, matching the
// teacher's own shallow filesystem_batch.go Copy semantics.
func (t *FileTree) copy(wd *File, src, dst Path, replaceExisting bool) error {
	t.Lock()
	defer t.Unlock()

	source, _, _, err := t.resolve(wd, src, true)
	if err != nil {
		return err
	}

	dstParent, dstName, err := t.resolveParent(wd, dst)
	if err != nil {
		return err
	}
	if existing := dstParent.Directory().Get(dstName); existing != nil && !replaceExisting {
		return newFileExists(dst.String())
	}

	var clone *File
	switch source.Kind() {
	case KindRegular:
		clone = t.newRegularFile()
		clone.store.release()
		clone.store = source.Store().Copy()
	case KindDirectory:
		clone = t.newDirectoryFile(dstParent)
	case KindSymbolicLink:
		clone = t.newSymlinkFile(source.SymlinkTarget())
	}

	if existing := dstParent.Directory().Get(dstName); existing != nil {
		if err := dstParent.Directory().Rebind(dstName, clone); err != nil {
			return err
		}
		t.releaseIfOrphaned(existing)
	} else {
		if err := dstParent.Directory().Add(dstName, clone); err != nil {
			return err
		}
	}
	dstParent.touchModified(time.Now())
	return nil
}
