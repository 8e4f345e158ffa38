package vfs

import (
	"bytes"
	"math/rand"
	"testing"
)

// conformanceCheck is one quantified invariant, exercised against a freshly built
// FileSystem. Table-driven in the style of cts_test.go's Check/CTS table, but run
// through stdlib subtests rather than a bespoke markdown report.
type conformanceCheck struct {
	name string
	run  func(t *testing.T, fsys *FileSystem)
}

var conformanceChecks = []conformanceCheck{
	{"PathRoundTrip", checkPathRoundTrip},
	{"NormalizeIdempotence", checkNormalizeIdempotence},
	{"ResolveRelativizeLaw", checkResolveRelativizeLaw},
	{"LinkCountIntegrity", checkLinkCountIntegrity},
	{"DirectoryLinkRule", checkDirectoryLinkRule},
	{"ByteStoreRoundTrip", checkByteStoreRoundTrip},
	{"SymlinkLoopDetection", checkSymlinkLoopDetection},
	{"OpenAcrossDelete", checkOpenAcrossDelete},
}

func TestConformance(t *testing.T) {
	for _, c := range conformanceChecks {
		c := c
		t.Run(c.name, func(t *testing.T) {
			fsys := newTestFS(t)
			c.run(t, fsys)
		})
	}
}

// checkPathRoundTrip verifies that parsing a path string and formatting it back
// reproduces the original for every PathType this package supports.
func checkPathRoundTrip(t *testing.T, fsys *FileSystem) {
	unixCases := []string{"/", "/a", "/a/b/c", "a", "a/b", "../a", ""}
	for _, s := range unixCases {
		p := NewPath(UnixPathType, s)
		if got := p.String(); got != s {
			t.Errorf("unix round trip %q: got %q", s, got)
		}
	}

	windowsCases := []string{`C:\`, `C:\a`, `C:\a\b`, `a`, `a\b`, `..\a`}
	for _, s := range windowsCases {
		p := NewPath(WindowsPathType, s)
		if got := p.String(); got != s {
			t.Errorf("windows round trip %q: got %q", s, got)
		}
	}
}

// checkNormalizeIdempotence verifies that normalizing an already-normal path is a
// no-op: Normalize(Normalize(p)) must equal Normalize(p).
func checkNormalizeIdempotence(t *testing.T, fsys *FileSystem) {
	cases := []string{
		"/a/./b/../c/d", "/../../a", "a/../../b", "/a/b/c", "", ".", "./a/./b",
	}
	for _, s := range cases {
		p := NewPath(UnixPathType, s)
		once := p.Normalize()
		twice := once.Normalize()
		if !once.Equal(twice) {
			t.Errorf("normalize not idempotent for %q: once=%q twice=%q", s, once.String(), twice.String())
		}
	}
}

// checkResolveRelativizeLaw verifies base.Resolve(base.Relativize(target)) == target
// whenever target and base share a root and Relativize succeeds.
func checkResolveRelativizeLaw(t *testing.T, fsys *FileSystem) {
	bases := []string{"/a/b", "/a/b/c", "/"}
	targets := []string{"/a/b/c/d", "/a/b", "/a/x/y", "/"}
	for _, bs := range bases {
		base := NewPath(UnixPathType, bs)
		for _, ts := range targets {
			target := NewPath(UnixPathType, ts)
			rel, err := base.Relativize(target)
			if err != nil {
				continue
			}
			got := base.Resolve(rel)
			if !got.Normalize().Equal(target.Normalize()) {
				t.Errorf("base=%q target=%q: resolve(relativize)=%q, want %q", bs, ts, got.String(), ts)
			}
		}
	}
}

// checkLinkCountIntegrity verifies a regular file's link count equals the number of
// directory entries currently bound to it: one name gives nlink 1, a second hard
// link raises it to 2, and removing a name lowers it by exactly one.
func checkLinkCountIntegrity(t *testing.T, fsys *FileSystem) {
	a := fsys.Path("/work/licount-a")
	if err := fsys.CreateFile(a); err != nil {
		t.Fatal(err)
	}
	if n, err := fsys.LinkCount(a); err != nil || n != 1 {
		t.Fatalf("expected nlink 1 after create, got %d err=%v", n, err)
	}

	b := fsys.Path("/work/licount-b")
	if err := fsys.CreateLink(b, a); err != nil {
		t.Fatal(err)
	}
	if n, err := fsys.LinkCount(a); err != nil || n != 2 {
		t.Fatalf("expected nlink 2 after linking, got %d err=%v", n, err)
	}

	if err := fsys.Delete(b); err != nil {
		t.Fatal(err)
	}
	if n, err := fsys.LinkCount(a); err != nil || n != 1 {
		t.Fatalf("expected nlink 1 after removing the link, got %d err=%v", n, err)
	}
}

// checkDirectoryLinkRule verifies every directory's link count equals 2 plus its
// number of subdirectories (itself via ".", its parent's entry, and one ".." per
// child directory pointing back at it).
func checkDirectoryLinkRule(t *testing.T, fsys *FileSystem) {
	root := fsys.Path("/dlr")
	if err := fsys.CreateDirectory(root); err != nil {
		t.Fatal(err)
	}
	if n, err := fsys.LinkCount(root); err != nil || n != 2 {
		t.Fatalf("expected fresh directory nlink 2, got %d err=%v", n, err)
	}

	for _, name := range []string{"x", "y", "z"} {
		if err := fsys.CreateDirectory(root.Resolve(NewPath(UnixPathType, name))); err != nil {
			t.Fatal(err)
		}
	}
	if n, err := fsys.LinkCount(root); err != nil || n != 5 {
		t.Fatalf("expected nlink 5 (2 + 3 subdirectories), got %d err=%v", n, err)
	}

	if err := fsys.CreateFile(root.Resolve(NewPath(UnixPathType, "plain.txt"))); err != nil {
		t.Fatal(err)
	}
	if n, err := fsys.LinkCount(root); err != nil || n != 5 {
		t.Fatalf("expected nlink unchanged by a regular file child, got %d err=%v", n, err)
	}

	if err := fsys.Delete(root.Resolve(NewPath(UnixPathType, "x"))); err != nil {
		t.Fatal(err)
	}
	if n, err := fsys.LinkCount(root); err != nil || n != 4 {
		t.Fatalf("expected nlink 4 after removing one subdirectory, got %d err=%v", n, err)
	}
}

// checkByteStoreRoundTrip verifies that writing a block of random bytes through a
// FileChannel and reading it back reproduces the content exactly, across a range of
// sizes that straddle the block boundary.
func checkByteStoreRoundTrip(t *testing.T, fsys *FileSystem) {
	rng := rand.New(rand.NewSource(1))
	for _, size := range []int{0, 1, 100, 8192, 8193, 20000} {
		data := make([]byte, size)
		rng.Read(data)

		p := fsys.Path("/work/roundtrip.bin")
		if err := WriteFile(fsys, p, data); err != nil {
			t.Fatalf("size %d: write failed: %v", size, err)
		}
		got, err := ReadFile(fsys, p)
		if err != nil {
			t.Fatalf("size %d: read failed: %v", size, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("size %d: round trip mismatch", size)
		}
	}
}

// checkSymlinkLoopDetection verifies both a direct self-loop and a longer mutual
// cycle are rejected with *TooManyLinksError rather than hanging.
func checkSymlinkLoopDetection(t *testing.T, fsys *FileSystem) {
	self := fsys.Path("/work/self-loop")
	if err := fsys.CreateSymbolicLink(self, self); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(fsys, self); !isTooManyLinks(err) {
		t.Fatalf("expected *TooManyLinksError for a self-loop, got %v", err)
	}

	a := fsys.Path("/work/loop-a")
	b := fsys.Path("/work/loop-b")
	if err := fsys.CreateSymbolicLink(a, b); err != nil {
		t.Fatal(err)
	}
	if err := fsys.CreateSymbolicLink(b, a); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(fsys, a); !isTooManyLinks(err) {
		t.Fatalf("expected *TooManyLinksError for a mutual cycle, got %v", err)
	}
}

func isTooManyLinks(err error) bool {
	_, ok := err.(*TooManyLinksError)
	return ok
}

// checkOpenAcrossDelete verifies a File remains readable through a channel opened
// before its last name was removed (the "unlinked but live" property), and that the
// channel still closes cleanly afterwards.
func checkOpenAcrossDelete(t *testing.T, fsys *FileSystem) {
	p := fsys.Path("/work/unlinked.txt")
	if err := WriteFile(fsys, p, []byte("still here")); err != nil {
		t.Fatal(err)
	}

	ch, err := fsys.OpenChannel(p, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}

	if err := fsys.Delete(p); err != nil {
		t.Fatal(err)
	}
	if fsys.Exists(p) {
		t.Fatal("expected the name to be gone after delete")
	}

	buf := make([]byte, len("still here"))
	if _, err := ch.Read(buf); err != nil {
		t.Fatalf("expected the still-open channel to keep reading after delete, got %v", err)
	}
	if string(buf) != "still here" {
		t.Fatalf("expected still here, got %q", buf)
	}

	if err := ch.Close(); err != nil {
		t.Fatal(err)
	}
}
