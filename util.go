package vfs

import (
	"bytes"
	"io"
	"log"
)

// silentClose closes closer and logs a failure instead of returning it, for defer
// sites where the caller already has a more important error in flight. Kept verbatim
// in spirit from vfslocal.go's Close handling, which used this exact pattern to avoid
// losing a primary error to a secondary Close failure.
func silentClose(closer io.Closer) {
	if err := closer.Close(); err != nil {
		log.Printf("failed to close: %v\n", err)
	}
}

// ReadFile reads the entire content of the regular file at path.
func ReadFile(fsys *FileSystem, path Path) ([]byte, error) {
	ch, err := fsys.OpenChannel(path, ReadOnly)
	if err != nil {
		return nil, err
	}
	defer silentClose(ch)

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, ch); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes data to the regular file at path, creating or truncating it as
// needed.
func WriteFile(fsys *FileSystem, path Path, data []byte) error {
	ch, err := fsys.OpenChannel(path, Create, Truncate, WriteOnly)
	if err != nil {
		return err
	}
	defer silentClose(ch)

	_, err = ch.Write(data)
	return err
}

// A WalkFunc is invoked for each entry visited by Walk, in the style of
// filepath.WalkFunc. Returning an error from WalkFunc aborts the walk and is returned
// by Walk, except for ErrSkipDir which only skips the current directory's children.
type WalkFunc func(path Path, dir bool, err error) error

// errSkipDir tells Walk to skip the directory just visited without aborting the walk.
type errSkipDir struct{}

func (errSkipDir) Error() string { return "skip directory" }

// ErrSkipDir is returned by a WalkFunc to skip the current directory's children.
var ErrSkipDir error = errSkipDir{}

// Walk recursively visits path and everything below it, depth-first, calling fn for
// each entry. Grounded on util.go's Walk, generalized from the deleted
// DataProvider.ReadDir/Scanner interface onto the new FileSystem/OperationsLayer
// surface.
func Walk(fsys *FileSystem, path Path, fn WalkFunc) error {
	isDir, err := fsys.IsDirectory(path)
	if err != nil {
		err = fn(path, false, err)
		if err == ErrSkipDir {
			return nil
		}
		return err
	}

	if err := fn(path, isDir, nil); err != nil {
		if err == ErrSkipDir {
			return nil
		}
		return err
	}
	if !isDir {
		return nil
	}

	names, err := fsys.ReadDir(path)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := Walk(fsys, path.Resolve(NewPath(path.PathType(), name)), fn); err != nil {
			return err
		}
	}
	return nil
}
