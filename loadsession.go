package nmo

// LoadSession captures the ID bookkeeping state for a single load (spec
// §4.4). It records, at start, the repository's current maximum ID as an
// allocation base so newly created objects can't collide with objects
// already present, then tracks a (file_id -> runtime_id) pair per
// created object.
type LoadSession struct {
	baseID  uint32
	entries map[uint32]uint32 // file_id -> runtime_id
}

// NewLoadSession starts a session whose allocation base is maxIDAtStart
// (the repository's MaxID() before this load began).
func NewLoadSession(maxIDAtStart uint32) *LoadSession {
	return &LoadSession{
		baseID:  maxIDAtStart,
		entries: make(map[uint32]uint32),
	}
}

// BaseID returns the repository's max ID as observed at session start.
func (s *LoadSession) BaseID() uint32 { return s.baseID }

// Register records the (file_id, runtime_id) pair for a newly created
// object. file_ids must be unique within one session; a duplicate is a
// malformed file, not a programmer error, so it returns KindInvalidState
// rather than panicking.
func (s *LoadSession) Register(fileID, runtimeID uint32) error {
	if _, exists := s.entries[fileID]; exists {
		return newErr(KindInvalidState, "LoadSession.Register", "duplicate file_id in load session")
	}
	s.entries[fileID] = runtimeID
	return nil
}

// Lookup returns the runtime ID registered for fileID, if any.
func (s *LoadSession) Lookup(fileID uint32) (uint32, bool) {
	id, ok := s.entries[fileID]
	return id, ok
}

// BuildRemapTable returns the file_id -> runtime_id map built so far
// (spec §4.7 phase 12). The returned map is a snapshot copy.
func (s *LoadSession) BuildRemapTable() map[uint32]uint32 {
	out := make(map[uint32]uint32, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Count returns how many (file_id, runtime_id) pairs have been registered.
func (s *LoadSession) Count() int { return len(s.entries) }
