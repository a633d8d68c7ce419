package nmo

// Schema is the per-class (deserialize, serialize, finish-load) triple a
// SchemaRegistry may supply for a class_id (spec §6). Any field may be
// nil; Deserialize/Serialize absence means chunk bytes are preserved
// verbatim (carried in Chunk.Data/RawTail), and FinishLoad absence means
// the finish-loading coordinator simply skips that hook for the class.
type Schema struct {
	Deserialize func(obj *Object) error
	Serialize   func(obj *Object) error
	FinishLoad  func(obj *Object, repo Repository) error
}

// SchemaRegistry maps class IDs to optional schema triples (spec §6).
type SchemaRegistry interface {
	FindByClass(classID uint32) (Schema, bool)
}

// mapSchemaRegistry is the default in-memory SchemaRegistry, grounded on
// the teacher's globalptr.go: a single small directory lookup with no
// dependencies of its own.
type mapSchemaRegistry struct {
	byClass map[uint32]Schema
}

// NewSchemaRegistry creates an empty, mutable SchemaRegistry.
func NewSchemaRegistry() *mapSchemaRegistry {
	return &mapSchemaRegistry{byClass: make(map[uint32]Schema)}
}

// Register installs (or replaces) the schema for classID.
func (m *mapSchemaRegistry) Register(classID uint32, s Schema) {
	m.byClass[classID] = s
}

func (m *mapSchemaRegistry) FindByClass(classID uint32) (Schema, bool) {
	s, ok := m.byClass[classID]
	return s, ok
}
