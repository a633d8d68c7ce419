package nmo

// Options configures a Session's pipelines (SPEC_FULL.md Ambient Stack /
// Configuration). Every field has a usable zero value; NewSession fills
// the rest with conservative defaults, mirroring the teacher's
// functional-options-free plain struct in file.go.
type Options struct {
	// Logger receives best-effort diagnostics (manager hook failures,
	// missing plugins, unresolved references). Defaults to a logger
	// that discards everything.
	Logger *Logger

	// Strict turns every best-effort failure (manager hooks, missing
	// plugins, unresolved references, schema finish-load) into a fatal
	// error instead of a logged warning.
	Strict bool

	// Schemas maps class IDs to optional (deserialize, serialize,
	// finish-load) triples. Defaults to an empty registry, meaning every
	// chunk round-trips as raw bytes.
	Schemas SchemaRegistry

	// ManagerHooks and ClassHooks are best-effort callbacks layered over
	// the pipelines. Both default to empty registries.
	ManagerHooks *ManagerHookRegistry
	ClassHooks   *ClassHookRegistry

	// Resolver resolves reference descriptors against the repository.
	// Defaults to a resolver with no custom per-class strategies (the
	// default/parameter/fuzzy/guid chain still applies).
	Resolver *ReferenceResolver

	// PluginAvailable reports whether a plugin dependency declared in
	// Header1 is available to the host. A nil func treats every
	// dependency as available (no plugin check performed).
	PluginAvailable func(category uint32, guid GUID) bool

	// PluginForClass supplies the plugin dependency a saved object's
	// class requires, if any (spec §4.8 phase 8: "build plugin
	// dependency list from the classes of the saved objects"). A nil
	// func or a false return omits the class from the dependency list.
	PluginForClass func(classID uint32) (PluginDep, bool)

	// CompressionLevel is passed to deflateStream for Header1/Data when the
	// corresponding file_write_mode bit is set. Defaults to
	// DefaultCompressionLevel.
	CompressionLevel int
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = NopLogger()
	}
	if o.Schemas == nil {
		o.Schemas = NewSchemaRegistry()
	}
	if o.ManagerHooks == nil {
		o.ManagerHooks = NewManagerHookRegistry()
	}
	if o.ClassHooks == nil {
		o.ClassHooks = NewClassHookRegistry()
	}
	if o.Resolver == nil {
		o.Resolver = NewReferenceResolver()
	}
	if o.CompressionLevel == 0 {
		o.CompressionLevel = DefaultCompressionLevel
	}
	return o
}

// IncludedFile is one externally-appended payload trailing the Data
// section (spec §3 item 5), carried through untouched.
type IncludedFile struct {
	Name string
	Data []byte
}

// Session is the top-level handle over one load or save pass: it owns a
// Repository, the managers parsed or to be written, and the header
// metadata produced by the last Load/Save call. Grounded on the
// teacher's File type in file.go, which bundles a parsed PE image with
// its own header/section state and a logger.
type Session struct {
	Repository    Repository
	Managers      []*Manager
	IncludedFiles []IncludedFile
	Header        *FileHeader
	Hdr1          *Header1
	Stats         ResolveStats

	opts Options
}

// NewSession creates a Session over repo (created fresh with
// NewRepository(0) if nil) using opts, filled in with defaults for any
// zero-valued field.
func NewSession(repo Repository, opts Options) *Session {
	if repo == nil {
		repo = NewRepository(0)
	}
	return &Session{Repository: repo, opts: opts.withDefaults()}
}
