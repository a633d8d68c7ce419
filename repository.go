package nmo

// Repository is the external object-store contract (spec §3, §6): a set
// of objects keyed by runtime ID, with class/name/guid lookups. The core
// never constructs one itself beyond the default in-memory
// implementation below — production embedders are expected to supply
// their own, e.g. backed by an existing engine's object table.
type Repository interface {
	// Add assigns a fresh runtime ID to obj, stores it, and returns that ID.
	Add(obj *Object) uint32

	// Count returns the number of stored objects.
	Count() int

	// ByIndex returns the object at position i in insertion order, or
	// (nil, false) if i is out of range.
	ByIndex(i int) (*Object, bool)

	// ByID returns the object with the given runtime ID.
	ByID(id uint32) (*Object, bool)

	// ByClass returns a snapshot, in insertion order, of every object
	// whose ClassID matches classID.
	ByClass(classID uint32) []*Object

	// ByName returns the first object with an exact (case-sensitive)
	// name match.
	ByName(name string) (*Object, bool)

	// ByGUID returns the first object whose TypeGUID matches guid.
	ByGUID(guid GUID) (*Object, bool)

	// MaxID returns the highest runtime ID allocated so far. The in-memory
	// implementation returns its start ID (0 for NewRepository(0)) while
	// it is still empty.
	MaxID() uint32
}

// memRepository is the default in-memory Repository, grounded on the
// teacher's small struct-plus-accessors shape (tls.go): a handful of
// fields, no external dependency, safe for a single session.
type memRepository struct {
	objects []*Object
	byID    map[uint32]*Object
	nextID  uint32
}

// NewRepository creates an empty in-memory Repository. startID lets a
// load session reserve a non-colliding ID range (spec §4.4: "captures, at
// start, the repository's current maximum ID as an allocation base").
func NewRepository(startID uint32) Repository {
	return &memRepository{
		byID:   make(map[uint32]*Object),
		nextID: startID,
	}
}

func (r *memRepository) Add(obj *Object) uint32 {
	r.nextID++
	obj.ID = r.nextID
	r.objects = append(r.objects, obj)
	r.byID[obj.ID] = obj
	return obj.ID
}

func (r *memRepository) Count() int { return len(r.objects) }

func (r *memRepository) ByIndex(i int) (*Object, bool) {
	if i < 0 || i >= len(r.objects) {
		return nil, false
	}
	return r.objects[i], true
}

func (r *memRepository) ByID(id uint32) (*Object, bool) {
	obj, ok := r.byID[id]
	return obj, ok
}

func (r *memRepository) ByClass(classID uint32) []*Object {
	var out []*Object
	for _, obj := range r.objects {
		if obj.ClassID == classID {
			out = append(out, obj)
		}
	}
	return out
}

func (r *memRepository) ByName(name string) (*Object, bool) {
	for _, obj := range r.objects {
		if obj.Name == name {
			return obj, true
		}
	}
	return nil, false
}

func (r *memRepository) ByGUID(guid GUID) (*Object, bool) {
	for _, obj := range r.objects {
		if obj.TypeGUID == guid {
			return obj, true
		}
	}
	return nil, false
}

func (r *memRepository) MaxID() uint32 { return r.nextID }
