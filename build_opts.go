package bundle

// BuildOption configures a Build operation.
type BuildOption func(*buildConfig)

// buildConfig holds configuration for one Build invocation.
type buildConfig struct {
	identifier      string
	version         Version
	versionSet      bool
	store           *Store
	runtimeDir      string
	runtimeFallback string
	outDir          string
	rules           []Rule
	level           int
}

// WithIdentifier sets the bundle identifier embedded in the archive name.
// Defaults to the base name of the source directory.
func WithIdentifier(id string) BuildOption {
	return func(c *buildConfig) { c.identifier = id }
}

// WithVersion pins the version embedded in the archive name.
func WithVersion(v Version) BuildOption {
	return func(c *buildConfig) {
		c.version = v
		c.versionSet = true
	}
}

// WithVersionStore resolves the version from a Store at build time.
// Ignored when WithVersion is also set.
func WithVersionStore(s *Store) BuildOption {
	return func(c *buildConfig) { c.store = s }
}

// WithRuntime adds a runtime dependency tree to the staging root.
func WithRuntime(dir string) BuildOption {
	return func(c *buildConfig) { c.runtimeDir = dir }
}

// WithRuntimeFallback names a second location tried when the runtime tree
// is absent. Build fails with ErrMissingRuntime only when both are missing.
func WithRuntimeFallback(dir string) BuildOption {
	return func(c *buildConfig) { c.runtimeFallback = dir }
}

// WithOutputDir sets where the archive is written. Defaults to the current
// directory.
func WithOutputDir(dir string) BuildOption {
	return func(c *buildConfig) { c.outDir = dir }
}

// WithRules replaces the default exclusion policy table.
func WithRules(rules []Rule) BuildOption {
	return func(c *buildConfig) { c.rules = rules }
}

// WithCompressionLevel overrides the gzip level. Levels the local gzip
// implementation rejects fall back to the default level.
func WithCompressionLevel(level int) BuildOption {
	return func(c *buildConfig) { c.level = level }
}
