package vfs

import "strings"

// A Path is structured data: an optional root Name plus an ordered sequence of
// ordinary Names. It owns no filesystem state and never touches a FileTree; all
// filesystem-aware resolution happens in the LookupEngine (see lookup.go).
//
// An empty Path (no root, zero names) is distinct from the root Path of its PathType:
// Path{} prints as "" while a root-only Path prints as e.g. "/".
//
// Adapted from the original worldiety-vfs Path type, which modeled a path as a bare
// string with StartsWith/EndsWith/Parent/Child helpers recomputed from scratch on
// every call. This version keeps those method names and their doc-comment register
// but stores the parsed structure once, which is what Normalize/Resolve/Relativize
// need to be something other than string surgery.
type Path struct {
	pt      PathType
	root    Name
	hasRoot bool
	names   []Name
}

// NewPath parses s under pt, following path string grammar.
func NewPath(pt PathType, s string) Path {
	root, rest, hasRoot := pt.ParseRoot(s)
	segs := splitSegments(pt, rest)
	names := make([]Name, len(segs))
	for i, seg := range segs {
		names[i] = NewName(seg, pt.CaseRule())
	}
	return Path{pt: pt, root: root, hasRoot: hasRoot, names: names}
}

// pathOf builds a Path directly from already-parsed parts, used internally by
// resolve/normalize/relativize where no reparsing is needed.
func pathOf(pt PathType, root Name, hasRoot bool, names []Name) Path {
	return Path{pt: pt, root: root, hasRoot: hasRoot, names: names}
}

// PathType returns the flavor this Path was parsed under.
func (p Path) PathType() PathType {
	return p.pt
}

// IsAbsolute reports whether this Path has a root.
func (p Path) IsAbsolute() bool {
	return p.hasRoot
}

// GetRoot returns the root Name and true, or the zero Name and false if this Path is
// relative.
func (p Path) GetRoot() (Name, bool) {
	if !p.hasRoot {
		return Name{}, false
	}
	return p.root, true
}

// GetFileName returns the last Name in the sequence, or the zero Name and false if
// this Path has no names (the empty path, or a bare root).
func (p Path) GetFileName() (Name, bool) {
	if len(p.names) == 0 {
		return Name{}, false
	}
	return p.names[len(p.names)-1], true
}

// GetParent returns the Path without its final Name. A single-name Path's parent is
// the root Path (if absolute) or the empty Path (if relative). The empty/root Path
// reports no parent (ok == false).
func (p Path) GetParent() (Path, bool) {
	if len(p.names) == 0 {
		return Path{}, false
	}
	parent := pathOf(p.pt, p.root, p.hasRoot, append([]Name{}, p.names[:len(p.names)-1]...))
	return parent, true
}

// GetNameCount returns how many ordinary Names this Path carries.
func (p Path) GetNameCount() int {
	return len(p.names)
}

// GetName returns the Name at position i (0-based).
func (p Path) GetName(i int) Name {
	return p.names[i]
}

// Subpath returns the Path formed from names [begin, end), always relative regardless
// of whether this Path is absolute.
func (p Path) Subpath(begin, end int) Path {
	return pathOf(p.pt, Name{}, false, append([]Name{}, p.names[begin:end]...))
}

// StartsWith tests whether this Path begins with other: other's root (if any) must
// match, and other's full name sequence must be a prefix of this Path's.
func (p Path) StartsWith(other Path) bool {
	if other.hasRoot != p.hasRoot || (other.hasRoot && !other.root.Equal(p.root)) {
		return false
	}
	if len(other.names) > len(p.names) {
		return false
	}
	for i, n := range other.names {
		if !n.Equal(p.names[i]) {
			return false
		}
	}
	return true
}

// EndsWith tests whether this Path ends with other's name sequence. If other carries a
// root, the two paths must be identical.
func (p Path) EndsWith(other Path) bool {
	if other.hasRoot {
		return p.Equal(other)
	}
	if len(other.names) > len(p.names) {
		return false
	}
	offset := len(p.names) - len(other.names)
	for i, n := range other.names {
		if !n.Equal(p.names[offset+i]) {
			return false
		}
	}
	return true
}

// Equal reports structural equality: same root presence/value and same name sequence.
func (p Path) Equal(other Path) bool {
	if p.hasRoot != other.hasRoot {
		return false
	}
	if p.hasRoot && !p.root.Equal(other.root) {
		return false
	}
	if len(p.names) != len(other.names) {
		return false
	}
	for i := range p.names {
		if !p.names[i].Equal(other.names[i]) {
			return false
		}
	}
	return true
}

// Normalize removes "." segments and collapses "name/.." pairs, purely syntactically
// — it never touches a FileTree or follows a symlink, matching POSIX/java.nio.file's
// Path.normalize() semantics. A leading ".." in a relative path is left in place; any
// ".." that would walk above an absolute path's root is dropped, since an absolute
// path can never go above its own root.
func (p Path) Normalize() Path {
	out := make([]Name, 0, len(p.names))
	for _, n := range p.names {
		switch {
		case n.IsSelf():
			continue
		case n.IsParent():
			if len(out) > 0 && !out[len(out)-1].IsParent() {
				out = out[:len(out)-1]
				continue
			}
			if p.hasRoot {
				continue
			}
			out = append(out, n)
		default:
			out = append(out, n)
		}
	}
	return pathOf(p.pt, p.root, p.hasRoot, out)
}

// Resolve resolves other against this Path: if other is absolute, it is returned
// unchanged; otherwise the result is this Path with other's names appended. Resolving
// the empty relative Path against p returns p.
func (p Path) Resolve(other Path) Path {
	if other.hasRoot {
		return other
	}
	if len(other.names) == 0 {
		return p
	}
	names := make([]Name, 0, len(p.names)+len(other.names))
	names = append(names, p.names...)
	names = append(names, other.names...)
	return pathOf(p.pt, p.root, p.hasRoot, names)
}

// ResolveSibling resolves other against this Path's parent, i.e.
// p.GetParent().Resolve(other). If p has no parent, behaves as other alone.
func (p Path) ResolveSibling(other Path) Path {
	parent, ok := p.GetParent()
	if !ok {
		if other.hasRoot {
			return other
		}
		return pathOf(p.pt, Name{}, false, other.names)
	}
	return parent.Resolve(other)
}

// Relativize computes a relative Path which, when resolved against p, yields other. It
// requires both Paths to have an equal root or both be rootless; otherwise it returns
// the zero Path and an *InvalidArgumentError.
func (p Path) Relativize(other Path) (Path, error) {
	if p.hasRoot != other.hasRoot || (p.hasRoot && !p.root.Equal(other.root)) {
		return Path{}, newInvalidArgument("Relativize requires equal roots", p.String())
	}
	pn := p.Normalize()
	on := other.Normalize()

	common := 0
	for common < len(pn.names) && common < len(on.names) && pn.names[common].Equal(on.names[common]) {
		common++
	}

	ups := len(pn.names) - common
	names := make([]Name, 0, ups+len(on.names)-common)
	for i := 0; i < ups; i++ {
		names = append(names, ParentName)
	}
	names = append(names, on.names[common:]...)
	return pathOf(p.pt, Name{}, false, names), nil
}

// ToAbsolutePath resolves this Path against wd if it is relative; wd must itself be
// absolute.
func (p Path) ToAbsolutePath(wd Path) Path {
	if p.hasRoot {
		return p
	}
	return wd.Resolve(p)
}

// Iterator returns the ordinary Names in order, excluding the root.
func (p Path) Iterator() []Name {
	return append([]Name{}, p.names...)
}

// String renders this Path back to a path string for its PathType, following // grammar: root prefix (if any) followed by names joined on the primary separator.
func (p Path) String() string {
	if len(p.names) == 0 && !p.hasRoot {
		return ""
	}
	sep := p.pt.Separator()
	var b strings.Builder
	if p.hasRoot {
		b.WriteString(p.pt.FormatRoot(p.root))
	}
	for i, n := range p.names {
		if i > 0 || (p.hasRoot && !strings.HasSuffix(b.String(), sep)) {
			b.WriteString(sep)
		}
		b.WriteString(n.String())
	}
	return b.String()
}
