package vfs

import "time"

// Feature names accepted in Config.SupportedFeatures. FeatureSecureDirectoryStreams is
// accepted for API compatibility with configurations migrated from a real filesystem
// binding but is never actually exercised by this package: there is no host directory
// descriptor to make "secure" in an in-memory tree, so enabling it only relaxes
// nothing and restricts nothing (see SPEC_FULL.md's Supplemented Features).
//
// FeatureSymbolicLinks and FeatureHardLinks gate createSymbolicLink/createLink and are
// on by default (defaultConfig lists both); passing WithFeatures explicitly replaces
// the whole list, so a caller that opts into a narrower feature set and still wants
// links must name them again.
const (
	FeatureSecureDirectoryStreams = "secureDirectoryStreams"
	FeatureSymbolicLinks          = "symbolic-links"
	FeatureHardLinks              = "hard-links"
)

// Config collects every knob FileSystem construction needs, built up through
// functional options the way builder.go assembled a DataProvider.
type Config struct {
	PathType          PathType
	WorkingDirectory  string
	BlockSize         int
	MaxCacheBytes     int64
	MaxSymlinkDepth   int
	SupportedViews    []string
	SupportedFeatures []string
	WatchPollInterval time.Duration
}

// defaultConfig returns the baseline Config before any Option is applied.
func defaultConfig() Config {
	return Config{
		PathType:          UnixPathType,
		WorkingDirectory:  "/work",
		BlockSize:         defaultBlockSize,
		MaxCacheBytes:     64 << 20,
		MaxSymlinkDepth:   32,
		SupportedViews:    []string{"basic", "owner", "posix", "unix"},
		SupportedFeatures: []string{FeatureSymbolicLinks, FeatureHardLinks},
		WatchPollInterval: defaultPollPeriod,
	}
}

// An Option mutates a Config during NewFileSystem, in the functional-options style
// builder.go and vfslocal.go's factories use.
type Option func(*Config)

// WithPathType selects the path flavor. Defaults to UnixPathType.
func WithPathType(pt PathType) Option {
	return func(c *Config) { c.PathType = pt }
}

// WithWorkingDirectory sets the initial working directory, created automatically if
// it does not already exist under the root. Defaults to "/work".
func WithWorkingDirectory(path string) Option {
	return func(c *Config) { c.WorkingDirectory = path }
}

// WithBlockSize overrides the ByteStore block size. Defaults to 8192.
func WithBlockSize(bytes int) Option {
	return func(c *Config) { c.BlockSize = bytes }
}

// WithMaxCacheBytes caps the shared freed-block pool's retained memory. Defaults to
// 64 MiB.
func WithMaxCacheBytes(bytes int64) Option {
	return func(c *Config) { c.MaxCacheBytes = bytes }
}

// WithMaxSymlinkDepth caps how many symbolic links a single lookup will follow before
// returning *TooManyLinksError. Defaults to 32.
func WithMaxSymlinkDepth(depth int) Option {
	return func(c *Config) { c.MaxSymlinkDepth = depth }
}

// WithAttributeViews enables the named attribute views in addition to "basic", which
// is always enabled.
func WithAttributeViews(views ...string) Option {
	return func(c *Config) { c.SupportedViews = views }
}

// WithFeatures records opt-in feature flags such as FeatureSecureDirectoryStreams.
func WithFeatures(features ...string) Option {
	return func(c *Config) { c.SupportedFeatures = features }
}

// WithWatchPollInterval overrides how often the WatchService rescans watched
// directories. Defaults to 5 seconds.
func WithWatchPollInterval(d time.Duration) Option {
	return func(c *Config) { c.WatchPollInterval = d }
}

// hasFeature reports whether name was passed to WithFeatures.
func (c Config) hasFeature(name string) bool {
	for _, f := range c.SupportedFeatures {
		if f == name {
			return true
		}
	}
	return false
}
