package vfs

// resolve walks target starting from wd (used when target is relative) or the tree
// root (when target is absolute), expanding symbolic links as it goes.
//
// followFinal controls whether a symbolic link named by the very last component of
// target is itself followed (true, the common case) or returned as-is (false, for
// operations like ReadSymbolicLink/Lstat-style attribute reads that must see the link
// rather than its target).
//
// On success it returns the resolved File, its containing directory, and the Name it
// was found under in that directory. The directory is nil (and the Name zero) when the
// walk ends without a final ordinary name: the tree root, the empty path, or a path
// ending in "." or "..". Callers that need to create a new entry (OpenChannelContext
// with Create or CreateNew) look at the
// *NoSuchFileError case: when err is that error and parent is non-nil, name is the
// single missing final component and parent is exactly where the new entry belongs.
//
// Must be called with the FileTree's structural lock held.
//
// The component-by-component walk with a mutable pending-name queue that symlink
// expansion splices into is adapted from hanwen/go-fuse's path-filesystem lookup loop,
// the one pack repo that implements real (not syntactic) path resolution with symlink
// expansion.
func (t *FileTree) resolve(wd *File, target Path, followFinal bool) (file, parent *File, name Name, err error) {
	var cur *File
	if target.IsAbsolute() {
		cur = t.root
	} else {
		cur = wd
	}

	pending := target.Iterator()
	idx := 0
	linkFollows := 0

	for idx < len(pending) {
		n := pending[idx]

		if n.IsSelf() {
			if cur.Kind() != KindDirectory {
				return nil, nil, Name{}, newNotDirectory(target.String())
			}
			idx++
			continue
		}

		if cur.Kind() != KindDirectory {
			return nil, nil, Name{}, newNotDirectory(target.String())
		}

		if n.IsParent() {
			cur = cur.Directory().Get(ParentName)
			idx++
			continue
		}

		isLast := idx == len(pending)-1
		child := cur.Directory().Get(n)
		if child == nil {
			if isLast {
				return nil, cur, n, newNoSuchFile(target.String())
			}
			return nil, nil, Name{}, newNoSuchFile(target.String())
		}

		if child.Kind() == KindSymbolicLink && (!isLast || followFinal) {
			linkFollows++
			if linkFollows > t.maxSymlinkDepth {
				return nil, nil, Name{}, newTooManyLinks(target.String(), t.maxSymlinkDepth)
			}
			linkTarget := child.SymlinkTarget()
			rest := append([]Name{}, pending[idx+1:]...)
			spliced := append([]Name{}, linkTarget.Iterator()...)
			spliced = append(spliced, rest...)
			pending = spliced
			idx = 0
			if linkTarget.IsAbsolute() {
				cur = t.root
			}
			continue
		}

		if isLast {
			return child, cur, n, nil
		}
		cur = child
		idx++
	}

	return cur, nil, Name{}, nil
}

// resolveParent resolves target's parent directory and returns it along with target's
// final Name, without requiring the final component to exist. It returns
// *InvalidArgumentError if target has no final component (the empty path or a bare
// root).
func (t *FileTree) resolveParent(wd *File, target Path) (parent *File, name Name, err error) {
	name, ok := target.GetFileName()
	if !ok {
		return nil, Name{}, newInvalidArgument("path has no final component", target.String())
	}
	parentPath, _ := target.GetParent()
	if parentPath.GetNameCount() == 0 && !parentPath.IsAbsolute() {
		// parent is the empty relative path: means "wd itself" when target had exactly
		// one relative name component.
		return wd, name, nil
	}
	parentFile, _, _, err := t.resolve(wd, parentPath, true)
	if err != nil {
		return nil, Name{}, err
	}
	if parentFile.Kind() != KindDirectory {
		return nil, Name{}, newNotDirectory(parentPath.String())
	}
	return parentFile, name, nil
}
