package vfs

import (
	"strings"
	"sync"
)

// viewSpec describes one attribute view: its own keys plus the views it inherits keys
// from (e.g. "unix" inherits "basic"+"owner"+"posix"). Inheritance is keys-only — a
// read of an inherited view still reports under its own qualified name.
type viewSpec struct {
	name     string
	keys     []string
	inherits []string
	freeform bool // true only for "user": any key is accepted, not just the listed ones
}

var builtinViews = map[string]*viewSpec{
	"basic": {
		name: "basic",
		keys: []string{"size", "isDirectory", "isRegularFile", "isSymbolicLink", "isOther",
			"fileKey", "creationTime", "lastModifiedTime", "lastAccessTime"},
	},
	"owner": {
		name: "owner",
		keys: []string{"owner"},
	},
	"posix": {
		name:     "posix",
		keys:     []string{"permissions", "group"},
		inherits: []string{"basic", "owner"},
	},
	"unix": {
		name:     "unix",
		keys:     []string{"uid", "gid", "mode", "ino", "dev", "nlink", "rdev", "ctime"},
		inherits: []string{"basic", "owner", "posix"},
	},
	"dos": {
		name:     "dos",
		keys:     []string{"readonly", "hidden", "archive", "system"},
		inherits: []string{"basic"},
	},
	"acl": {
		name:     "acl",
		keys:     []string{"acl"},
		inherits: []string{"owner"},
	},
	"user": {
		name:     "user",
		freeform: true,
	},
}

// derivedUnixKeys names the unix view's own keys that are always computed from the
// File itself (or from an inherited stored value) and are never read from or written
// to the attribute bag directly. ctime is the one unix-declared key that behaves like
// a normal stored attribute, left out of this set deliberately.
var derivedUnixKeys = map[string]bool{
	"ino": true, "nlink": true, "mode": true, "uid": true, "gid": true, "dev": true, "rdev": true,
}

// Unix mode_t file-type bits (S_IFDIR/S_IFREG/S_IFLNK), OR'd with a permission value to
// derive the unix view's "mode" key.
const (
	modeTypeDirectory = 0o040000
	modeTypeRegular   = 0o100000
	modeTypeSymlink   = 0o120000
)

// Default permission bits used when posix:permissions was never explicitly written,
// matching the common umask-derived defaults a real filesystem would hand back.
const (
	defaultDirPermissions     = 0o755
	defaultRegularPermissions = 0o644
	defaultSymlinkPermissions = 0o777
)

// unixDeviceNumber is the fixed device number reported for every File, since every
// File in one FileTree lives on the same single in-memory "device". rdev is always
// zero: this package has no device-special files.
const unixDeviceNumber = 1

// An AttributeRegistry is the capability set of attribute views a FileSystem supports.
// Only views named in Config.SupportedViews (plus "basic", always present) are
// queryable; asking for an unsupported view returns *UnsupportedError. It also owns the
// principal-id cache backing the unix view's derived uid/gid.
//
// Grounded on vfs2.go's attribute surface (ReadAttrs/WriteAttrs keyed by an
// opaque exchange type), generalized from a single flat bag into a pluggable,
// inheriting view system — itself a Go-idiomatic reading of
// Java nio's *AttributeView/*FileAttributes interface family.
type AttributeRegistry struct {
	supported map[string]*viewSpec

	principalMu   sync.Mutex
	principalIDs  map[string]int64
	nextPrincipal int64
}

// NewAttributeRegistry builds a registry supporting "basic" plus every name in views.
// Naming a view whose inherited views aren't also named is not an error: inherited
// views become implicitly readable (their keys show up under the child's qualified
// name) but are not independently addressable unless also named explicitly.
func NewAttributeRegistry(views []string) *AttributeRegistry {
	r := &AttributeRegistry{
		supported:     make(map[string]*viewSpec),
		principalIDs:  make(map[string]int64),
		nextPrincipal: 1000,
	}
	r.supported["basic"] = builtinViews["basic"]
	for _, v := range views {
		if spec, ok := builtinViews[v]; ok {
			r.supported[v] = spec
		}
	}
	return r
}

// Supports reports whether view is enabled for this registry.
func (r *AttributeRegistry) Supports(view string) bool {
	_, ok := r.supported[view]
	return ok
}

// principalID assigns a stable numeric id to a principal name the first time it is
// seen, the way a real host assigns a uid/gid on account creation; later lookups of the
// same name return the same id. The empty name (no owner/group ever written) gets its
// own stable id rather than a special case.
func (r *AttributeRegistry) principalID(name string) int64 {
	r.principalMu.Lock()
	defer r.principalMu.Unlock()
	if id, ok := r.principalIDs[name]; ok {
		return id
	}
	id := r.nextPrincipal
	r.nextPrincipal++
	r.principalIDs[name] = id
	return id
}

// splitQualified parses a "view:attr" key, defaulting to the basic view when no colon
// is present.
func splitQualified(key string) (view, attr string) {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "basic", key
}

// attributeBag holds every view:attr value a File carries beyond what's derived live
// from the File itself (basic view's size/times/kind are always computed fresh, never
// stored here).
type attributeBag struct {
	mu     sync.RWMutex
	values map[string]interface{}
}

func newAttributeBag() *attributeBag {
	return &attributeBag{values: make(map[string]interface{})}
}

func (b *attributeBag) get(key string) (interface{}, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	return v, ok
}

func (b *attributeBag) set(key string, value interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
}

func (b *attributeBag) keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.values))
	for k := range b.values {
		out = append(out, k)
	}
	return out
}

// widenNumeric canonicalizes every signed/unsigned integer width to int64 and every
// float width to float64 before storage, so a later read always sees one consistent
// Go type regardless of which width the caller wrote with.
func widenNumeric(value interface{}) interface{} {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return float64(v)
	default:
		return value
	}
}

// basicValues computes the always-derived basic view for f, never touching the
// attribute bag.
func basicValues(f *File) map[string]interface{} {
	created, modified, accessed := f.Times()
	size := int64(0)
	if f.Kind() == KindRegular {
		size = f.Store().Size()
	}
	return map[string]interface{}{
		"size":             size,
		"isDirectory":      f.Kind() == KindDirectory,
		"isRegularFile":    f.Kind() == KindRegular,
		"isSymbolicLink":   f.Kind() == KindSymbolicLink,
		"isOther":          false,
		"fileKey":          f.ID(),
		"creationTime":     created,
		"lastModifiedTime": modified,
		"lastAccessTime":   accessed,
	}
}

// ownerName returns the stored owner:owner principal name, or "" if none was ever
// written.
func ownerName(f *File) string {
	if v, ok := f.attrs.get("owner:owner"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// groupName returns the stored posix:group principal name, or "" if none was ever
// written.
func groupName(f *File) string {
	if v, ok := f.attrs.get("posix:group"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// deriveMode computes the unix view's "mode" key: a file-type bit pattern OR'd with a
// permission value taken from posix:permissions (or a type-appropriate default if
// nothing was ever written there).
func deriveMode(f *File) int64 {
	var typeBits, defaultPerm int64
	switch f.Kind() {
	case KindDirectory:
		typeBits, defaultPerm = modeTypeDirectory, defaultDirPermissions
	case KindSymbolicLink:
		typeBits, defaultPerm = modeTypeSymlink, defaultSymlinkPermissions
	default:
		typeBits, defaultPerm = modeTypeRegular, defaultRegularPermissions
	}
	perm := defaultPerm
	if v, ok := f.attrs.get("posix:permissions"); ok {
		if p, ok := v.(int64); ok {
			perm = p
		}
	}
	return typeBits | perm
}

// deriveUnixValue computes one of the unix view's derived keys directly from f (and,
// for uid/gid, this registry's principal cache). Callers must only pass a key present
// in derivedUnixKeys.
func (r *AttributeRegistry) deriveUnixValue(f *File, key string) interface{} {
	switch key {
	case "ino":
		return int64(f.ID())
	case "nlink":
		return int64(f.LinkCount())
	case "mode":
		return deriveMode(f)
	case "uid":
		return r.principalID(ownerName(f))
	case "gid":
		return r.principalID(groupName(f))
	case "dev":
		return int64(unixDeviceNumber)
	case "rdev":
		return int64(0)
	default:
		return nil
	}
}

// transitiveKeyViews returns every key visible for view, including inherited views'
// keys, mapped to the name of the view that actually declares — and stores — each key.
// A key closer to spec in the inheritance chain wins if two views ever declared the
// same bare name (none of the builtin views do).
func transitiveKeyViews(spec *viewSpec, seen map[string]bool, out map[string]string) map[string]string {
	if out == nil {
		out = make(map[string]string)
	}
	if seen == nil {
		seen = make(map[string]bool)
	}
	if seen[spec.name] {
		return out
	}
	seen[spec.name] = true

	for _, k := range spec.keys {
		if _, ok := out[k]; !ok {
			out[k] = spec.name
		}
	}
	for _, parent := range spec.inherits {
		if pspec, ok := builtinViews[parent]; ok {
			transitiveKeyViews(pspec, seen, out)
		}
	}
	return out
}

// ReadAll returns every attribute value visible under view for f, including values
// inherited from views it composes. It returns *UnsupportedError if view is not
// enabled on this registry.
func (r *AttributeRegistry) ReadAll(f *File, view string) (map[string]interface{}, error) {
	spec, ok := r.supported[view]
	if !ok {
		return nil, newUnsupported("attribute view: " + view)
	}

	out := make(map[string]interface{})
	if view == "basic" {
		for k, v := range basicValues(f) {
			out[k] = v
		}
		return out, nil
	}

	if spec.freeform {
		prefix := view + ":"
		for _, k := range f.attrs.keys() {
			if strings.HasPrefix(k, prefix) {
				val, _ := f.attrs.get(k)
				out[strings.TrimPrefix(k, prefix)] = val
			}
		}
		return out, nil
	}

	for k, declaringView := range transitiveKeyViews(spec, nil, nil) {
		if basicSpec := builtinViews["basic"]; containsKey(basicSpec.keys, k) {
			continue
		}
		if declaringView == "unix" && derivedUnixKeys[k] {
			out[k] = r.deriveUnixValue(f, k)
			continue
		}
		if val, ok := f.attrs.get(declaringView + ":" + k); ok {
			out[k] = val
			continue
		}
		// not yet explicitly set: report the zero value for known keys so a read never
		// errors merely because nothing was ever written.
		out[k] = nil
	}
	for k, v := range basicValues(f) {
		out[k] = v
	}
	return out, nil
}

func containsKey(keys []string, k string) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}

// ReadOne returns the value for a single qualified "view:attr" key.
func (r *AttributeRegistry) ReadOne(f *File, qualifiedKey string) (interface{}, error) {
	view, attr := splitQualified(qualifiedKey)
	all, err := r.ReadAll(f, view)
	if err != nil {
		return nil, err
	}
	val, ok := all[attr]
	if !ok {
		return nil, newInvalidArgument("unknown attribute", qualifiedKey)
	}
	return val, nil
}

// Write sets a single qualified "view:attr" key on f. The basic view's fields are
// derived and read-only, as are the unix view's derivedUnixKeys; attempting to write
// one returns *UnsupportedError. The "user" view is free-form and requires a []byte
// value; every other view requires the key to be one of its declared attribute names.
func (r *AttributeRegistry) Write(f *File, qualifiedKey string, value interface{}) error {
	view, attr := splitQualified(qualifiedKey)
	spec, ok := r.supported[view]
	if !ok {
		return newUnsupported("attribute view: " + view)
	}
	if view == "basic" {
		return newUnsupported("basic view attributes are read-only: " + attr)
	}
	if view == "unix" && derivedUnixKeys[attr] {
		return newUnsupported("unix view attribute is derived and read-only: " + attr)
	}
	if spec.freeform {
		if _, ok := value.([]byte); !ok {
			return newInvalidArgument("user view values must be []byte", attr)
		}
		f.attrs.set(view+":"+attr, value)
		return nil
	}
	if !containsKey(spec.keys, attr) {
		return newInvalidArgument("unknown attribute for view "+view, attr)
	}
	f.attrs.set(view+":"+attr, widenNumeric(value))
	return nil
}
