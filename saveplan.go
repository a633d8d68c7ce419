package nmo

// SavePlan assigns dense file_ids to runtime objects being written out
// (spec §4.4, §4.8 phase 3 "id compaction"). Unlike LoadSession, which
// only ever grows a lookup table, a SavePlan must produce a contiguous
// 0..N-1 numbering regardless of how sparse the runtime IDs are, since
// the on-disk object count drives both the Header1 descriptor table and
// MaxIDSaved.
type SavePlan struct {
	byRuntimeID map[uint32]uint32 // runtime_id -> file_id
	order       []uint32          // runtime_ids in assignment order
}

// NewSavePlan creates an empty plan.
func NewSavePlan() *SavePlan {
	return &SavePlan{byRuntimeID: make(map[uint32]uint32)}
}

// Assign reserves the next dense file_id for runtimeID. Assigning the
// same runtimeID twice is a programming error in the save pipeline
// (every object is walked exactly once), so it is reported rather than
// silently accepted.
func (p *SavePlan) Assign(runtimeID uint32) (uint32, error) {
	if _, exists := p.byRuntimeID[runtimeID]; exists {
		return 0, newErr(KindInvalidState, "SavePlan.Assign", "runtime id already assigned a file id")
	}
	fileID := uint32(len(p.order))
	p.byRuntimeID[runtimeID] = fileID
	p.order = append(p.order, runtimeID)
	return fileID, nil
}

// Lookup returns the file_id previously assigned to runtimeID.
func (p *SavePlan) Lookup(runtimeID uint32) (uint32, bool) {
	id, ok := p.byRuntimeID[runtimeID]
	return id, ok
}

// Count returns how many objects have been assigned a file_id so far.
func (p *SavePlan) Count() int { return len(p.order) }

// MaxFileID returns the highest file_id assigned, i.e. Count()-1, or 0
// when nothing has been assigned yet.
func (p *SavePlan) MaxFileID() uint32 {
	if len(p.order) == 0 {
		return 0
	}
	return uint32(len(p.order) - 1)
}

// Order returns the runtime IDs in the order file_ids were assigned,
// i.e. Order()[i] is the object holding file_id i.
func (p *SavePlan) Order() []uint32 {
	out := make([]uint32, len(p.order))
	copy(out, p.order)
	return out
}
