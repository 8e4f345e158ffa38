//Package vfs provides an in-memory, in-process virtual filesystem: a tree of
//directories, regular files, and symbolic links addressed through Path values, with
//pluggable attribute views and directory-change watching, independent of any
//underlying host filesystem.
package vfs

import (
	"context"
)

// A FileSystem ties a FileTree, an AttributeRegistry, and a lazily-started
// WatchService together behind one exported surface, mirroring how
// vfslocal.go wired a DataProvider, its attribute support, and its router together
// into one value callers hold onto.
type FileSystem struct {
	cfg   Config
	tree  *FileTree
	attrs *AttributeRegistry
	watch *WatchService

	wd *File
}

// NewFileSystem builds a FileSystem from the given options, starting from
// defaultConfig. Its working directory (Config.WorkingDirectory, "/work" by default)
// is created automatically.
func NewFileSystem(opts ...Option) (*FileSystem, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	tree := newFileTree(cfg.PathType, cfg)
	fsys := &FileSystem{
		cfg:   cfg,
		tree:  tree,
		attrs: NewAttributeRegistry(cfg.SupportedViews),
		wd:    tree.Root(),
	}

	wdPath := NewPath(cfg.PathType, cfg.WorkingDirectory)
	if wdPath.GetNameCount() > 0 {
		if err := fsys.mkdirAll(wdPath); err != nil {
			return nil, err
		}
		f, _, _, err := tree.resolve(tree.Root(), wdPath, true)
		if err != nil {
			return nil, err
		}
		fsys.wd = f
	}
	return fsys, nil
}

// NewUnixLike builds a FileSystem preconfigured the way a default local
// provider targeted a POSIX host: UnixPathType, a "/work" working directory, and the
// unix attribute view family enabled.
func NewUnixLike(opts ...Option) (*FileSystem, error) {
	base := []Option{
		WithPathType(UnixPathType),
		WithWorkingDirectory("/work"),
		WithAttributeViews("basic", "owner", "posix", "unix"),
	}
	return NewFileSystem(append(base, opts...)...)
}

// NewWindowsLike builds a FileSystem preconfigured for the Windows path flavor:
// WindowsPathType, a "C:\work" working directory, and the dos/acl attribute view
// family enabled.
func NewWindowsLike(opts ...Option) (*FileSystem, error) {
	base := []Option{
		WithPathType(WindowsPathType),
		WithWorkingDirectory(`C:\work`),
		WithAttributeViews("basic", "owner", "dos", "acl"),
	}
	return NewFileSystem(append(base, opts...)...)
}

func (fsys *FileSystem) mkdirAll(path Path) error {
	for i := 1; i <= path.GetNameCount(); i++ {
		prefix := path.Subpath(0, i)
		if path.IsAbsolute() {
			root, _ := path.GetRoot()
			prefix = pathOf(path.PathType(), root, true, prefix.Iterator())
		}
		_, err := fsys.tree.createDirectory(fsys.tree.Root(), prefix)
		if err != nil {
			if _, ok := err.(*FileExistsError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// Path constructs a Path under this FileSystem's PathType.
func (fsys *FileSystem) Path(s string) Path {
	return NewPath(fsys.cfg.PathType, s)
}

// WorkingDirectory returns the absolute Path of the current working directory.
func (fsys *FileSystem) WorkingDirectory() Path {
	return fsys.Path(fsys.cfg.WorkingDirectory)
}

func (fsys *FileSystem) resolve(path Path, followFinal bool) (*File, *File, Name, error) {
	return fsys.tree.resolve(fsys.wd, path, followFinal)
}

// CreateFile creates a new, empty regular file at path.
func (fsys *FileSystem) CreateFile(path Path) error {
	_, err := fsys.tree.createFile(fsys.wd, path)
	return err
}

// CreateDirectory creates a new, empty directory at path.
func (fsys *FileSystem) CreateDirectory(path Path) error {
	_, err := fsys.tree.createDirectory(fsys.wd, path)
	return err
}

// CreateDirectories creates path and every missing parent along the way, the way
// os.MkdirAll does; an already-existing directory at any level is not an error.
func (fsys *FileSystem) CreateDirectories(path Path) error {
	return fsys.mkdirAll(path.ToAbsolutePath(fsys.WorkingDirectory()))
}

// CreateSymbolicLink creates a symbolic link at path pointing at target.
func (fsys *FileSystem) CreateSymbolicLink(path, target Path) error {
	_, err := fsys.tree.createSymbolicLink(fsys.wd, path, target)
	return err
}

// CreateLink creates newPath as a hard link to the same File already named by
// existingPath.
func (fsys *FileSystem) CreateLink(newPath, existingPath Path) error {
	return fsys.tree.createLink(fsys.wd, newPath, existingPath)
}

// Delete removes the entry at path.
func (fsys *FileSystem) Delete(path Path) error {
	return fsys.tree.deleteEntry(fsys.wd, path)
}

// DeleteIfExists removes the entry at path if present, reporting false (no error) if
// nothing was there to delete.
func (fsys *FileSystem) DeleteIfExists(path Path) (bool, error) {
	err := fsys.tree.deleteEntry(fsys.wd, path)
	if err == nil {
		return true, nil
	}
	if _, ok := err.(*NoSuchFileError); ok {
		return false, nil
	}
	return false, err
}

// Move relocates (and optionally renames) src to dst, failing with *FileExistsError
// if dst exists.
func (fsys *FileSystem) Move(src, dst Path) error {
	return fsys.tree.move(fsys.wd, src, dst, false)
}

// MoveReplacing is Move but silently replaces an existing non-directory or empty
// directory at dst.
func (fsys *FileSystem) MoveReplacing(src, dst Path) error {
	return fsys.tree.move(fsys.wd, src, dst, true)
}

// Copy duplicates src to dst as an independent File, failing with *FileExistsError if
// dst exists.
func (fsys *FileSystem) Copy(src, dst Path) error {
	return fsys.tree.copy(fsys.wd, src, dst, false)
}

// CopyReplacing is Copy but silently replaces an existing entry at dst.
func (fsys *FileSystem) CopyReplacing(src, dst Path) error {
	return fsys.tree.copy(fsys.wd, src, dst, true)
}

// Exists reports whether path resolves to anything at all.
func (fsys *FileSystem) Exists(path Path) bool {
	fsys.tree.Lock()
	defer fsys.tree.Unlock()
	_, _, _, err := fsys.resolve(path, true)
	return err == nil
}

// IsDirectory reports whether path resolves to a directory.
func (fsys *FileSystem) IsDirectory(path Path) (bool, error) {
	fsys.tree.Lock()
	defer fsys.tree.Unlock()
	f, _, _, err := fsys.resolve(path, true)
	if err != nil {
		return false, err
	}
	return f.Kind() == KindDirectory, nil
}

// FileID returns the stable identity of the File that path resolves to (the "fileKey"
// basic attribute, exposed directly for tests and callers that need to recognize the
// same File surviving a move).
func (fsys *FileSystem) FileID(path Path) (uint64, error) {
	fsys.tree.Lock()
	defer fsys.tree.Unlock()
	f, _, _, err := fsys.resolve(path, true)
	if err != nil {
		return 0, err
	}
	return f.ID(), nil
}

// LinkCount returns the number of directory entries currently referring to the File at
// path.
func (fsys *FileSystem) LinkCount(path Path) (int, error) {
	fsys.tree.Lock()
	defer fsys.tree.Unlock()
	f, _, _, err := fsys.resolve(path, true)
	if err != nil {
		return 0, err
	}
	return f.LinkCount(), nil
}

// IsRegularFile reports whether path resolves to a regular file.
func (fsys *FileSystem) IsRegularFile(path Path) (bool, error) {
	fsys.tree.Lock()
	defer fsys.tree.Unlock()
	f, _, _, err := fsys.resolve(path, true)
	if err != nil {
		return false, err
	}
	return f.Kind() == KindRegular, nil
}

// IsSymbolicLink reports whether path itself (not what it points to) is a symbolic
// link.
func (fsys *FileSystem) IsSymbolicLink(path Path) (bool, error) {
	fsys.tree.Lock()
	defer fsys.tree.Unlock()
	f, _, _, err := fsys.resolve(path, false)
	if err != nil {
		return false, err
	}
	return f.Kind() == KindSymbolicLink, nil
}

// ReadSymbolicLink returns the verbatim target Path of the symbolic link at path. It
// returns *InvalidArgumentError if path does not name a symbolic link.
func (fsys *FileSystem) ReadSymbolicLink(path Path) (Path, error) {
	fsys.tree.Lock()
	defer fsys.tree.Unlock()
	f, _, _, err := fsys.resolve(path, false)
	if err != nil {
		return Path{}, err
	}
	if f.Kind() != KindSymbolicLink {
		return Path{}, newInvalidArgument("not a symbolic link", path.String())
	}
	return f.SymlinkTarget(), nil
}

// ReadDir returns the entry names of the directory at path, in insertion order.
func (fsys *FileSystem) ReadDir(path Path) ([]string, error) {
	fsys.tree.Lock()
	defer fsys.tree.Unlock()
	f, _, _, err := fsys.resolve(path, true)
	if err != nil {
		return nil, err
	}
	if f.Kind() != KindDirectory {
		return nil, newNotDirectory(path.String())
	}
	names := f.Directory().Names()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.String()
	}
	return out, nil
}

// ReadAttributes returns every attribute value visible under view for path.
func (fsys *FileSystem) ReadAttributes(path Path, view string) (map[string]interface{}, error) {
	fsys.tree.Lock()
	f, _, _, err := fsys.resolve(path, true)
	fsys.tree.Unlock()
	if err != nil {
		return nil, err
	}
	return fsys.attrs.ReadAll(f, view)
}

// ReadAttribute returns the value for a single qualified "view:attr" key at path.
func (fsys *FileSystem) ReadAttribute(path Path, qualifiedKey string) (interface{}, error) {
	fsys.tree.Lock()
	f, _, _, err := fsys.resolve(path, true)
	fsys.tree.Unlock()
	if err != nil {
		return nil, err
	}
	return fsys.attrs.ReadOne(f, qualifiedKey)
}

// SetAttribute sets a single qualified "view:attr" key at path.
func (fsys *FileSystem) SetAttribute(path Path, qualifiedKey string, value interface{}) error {
	fsys.tree.Lock()
	f, _, _, err := fsys.resolve(path, true)
	fsys.tree.Unlock()
	if err != nil {
		return err
	}
	return fsys.attrs.Write(f, qualifiedKey, value)
}

// OpenChannel opens path as a FileChannel under the given options. The returned
// channel's I/O calls observe ctx's cancellation (use context.Background() for a
// channel that should never be interrupted).
func (fsys *FileSystem) OpenChannel(path Path, opts ...OpenOption) (*FileChannel, error) {
	return fsys.OpenChannelContext(context.Background(), path, opts...)
}

// OpenChannelContext is OpenChannel with an explicit context for cancellation.
func (fsys *FileSystem) OpenChannelContext(ctx context.Context, path Path, opts ...OpenOption) (*FileChannel, error) {
	merged := mergeOptions(opts)
	if merged == 0 {
		merged = ReadOnly
	}

	fsys.tree.Lock()
	f, parent, name, err := fsys.resolve(path, true)
	if err != nil {
		if _, ok := err.(*NoSuchFileError); ok && (merged.has(Create) || merged.has(CreateNew)) && parent != nil {
			f = fsys.tree.newRegularFile()
			if addErr := parent.Directory().Add(name, f); addErr != nil {
				fsys.tree.Unlock()
				return nil, addErr
			}
		} else {
			fsys.tree.Unlock()
			return nil, err
		}
	} else if merged.has(CreateNew) {
		fsys.tree.Unlock()
		return nil, newFileExists(path.String())
	}
	fsys.tree.Unlock()

	if f.Kind() != KindRegular {
		return nil, newIsDirectory(path.String())
	}
	if merged.has(Truncate) {
		f.contentLock.Lock()
		_ = f.Store().Truncate(0)
		f.contentLock.Unlock()
	}

	f.addOpenHandle()
	onClose := func() error {
		var delErr error
		if merged.has(DeleteOnClose) {
			delErr = fsys.Delete(path)
		}
		fsys.tree.Lock()
		f.removeOpenHandle()
		fsys.tree.releaseIfOrphaned(f)
		fsys.tree.Unlock()
		return delErr
	}
	return newFileChannel(ctx, fsys.tree, f, merged, onClose), nil
}

// Watch starts watching the directory at path for entry creation/deletion, polling on
// Config.WatchPollInterval.
func (fsys *FileSystem) Watch(path Path) (*WatchKey, error) {
	fsys.tree.Lock()
	f, _, _, err := fsys.resolve(path, true)
	fsys.tree.Unlock()
	if err != nil {
		return nil, err
	}
	if f.Kind() != KindDirectory {
		return nil, newNotDirectory(path.String())
	}

	if fsys.watch == nil {
		fsys.watch = newWatchService(fsys.tree, fsys.cfg.WatchPollInterval)
	}
	return fsys.watch.Register(f, path)
}

// Close stops this FileSystem's WatchService, if one was ever started. A FileSystem
// that never called Watch needs no Close.
func (fsys *FileSystem) Close() error {
	if fsys.watch != nil {
		return fsys.watch.Close()
	}
	return nil
}
