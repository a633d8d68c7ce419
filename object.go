package nmo

// Object is a runtime scene object: an entity, mesh, camera, behavior,
// material, parameter, or manager-owned payload (spec §3). ID is
// assigned by the Repository at insertion and is unique within it.
type Object struct {
	ID        uint32
	ClassID   uint32
	Name      string
	Flags     uint32
	Chunk     *Chunk
	TypeGUID  GUID
	FileIndex uint32

	// Reference marks this object to be saved as a reference descriptor
	// (no ObjectBlock emitted) rather than a full chunk. Set by the
	// caller before Save; left false for objects owned by this session.
	Reference bool
}
