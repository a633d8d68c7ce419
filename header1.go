package nmo

// ReferenceBit marks a Header1 ObjectDescriptor as a reference descriptor:
// no chunk exists for it in the Data section, and on load it must be
// bound to an existing repository object (spec §3, §4.5).
const ReferenceBit = 0x00800000

// ObjectDescriptor is one entry of Header1's object list (spec §3).
// Grounded on the teacher's symbol.go COFF-symbol-table shape: a flat,
// ordered array of name+class+flags records read before any payload
// bytes are touched.
type ObjectDescriptor struct {
	FileID    uint32
	ClassID   uint32
	Name      string
	FileIndex uint32
	Flags     uint32
}

// IsReference reports whether this descriptor's high bit marks it as a
// reference (no ObjectBlock in Data).
func (d ObjectDescriptor) IsReference() bool { return d.FileID&ReferenceBit != 0 }

// PlainFileID strips the reference bit, returning the dense file ID.
func (d ObjectDescriptor) PlainFileID() uint32 { return d.FileID &^ ReferenceBit }

// PluginDep is one entry of Header1's plugin dependency list (spec §3).
// Grounded on the teacher's boundimports.go shape: an array of
// GUID-identified dependency records with a version stamp.
type PluginDep struct {
	Category uint32
	GUID     GUID
	Version  uint32
}

// IncludedFileDesc describes one file appended after the Data section
// (spec §3). Grounded on the teacher's overlay.go: trailing data that
// exists outside the checksummed region.
type IncludedFileDesc struct {
	Name     string
	DataSize uint32
}

// Header1 is the parsed object-descriptor / plugin-dependency /
// included-file index that precedes the Data section (spec §3).
type Header1 struct {
	Objects       []ObjectDescriptor
	Plugins       []PluginDep
	IncludedFiles []IncludedFileDesc
}

// ParseHeader1 reads the three ordered lists in sequence. Versions that
// lack a given list simply have a zero count for it on the wire; an
// empty slice is produced either way.
func ParseHeader1(r *byteReader) (*Header1, error) {
	h := &Header1{}

	objCount, err := r.ReadU32()
	if err != nil {
		return nil, wrapErr(KindEOF, "ParseHeader1", "read object count", err)
	}
	h.Objects = make([]ObjectDescriptor, 0, objCount)
	for i := uint32(0); i < objCount; i++ {
		var d ObjectDescriptor
		if d.FileID, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseHeader1", "read descriptor file_id", err)
		}
		if d.ClassID, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseHeader1", "read descriptor class_id", err)
		}
		if d.Name, err = r.ReadCString(); err != nil {
			return nil, wrapErr(KindInvalidFormat, "ParseHeader1", "read descriptor name", err)
		}
		if d.FileIndex, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseHeader1", "read descriptor file_index", err)
		}
		if d.Flags, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseHeader1", "read descriptor flags", err)
		}
		h.Objects = append(h.Objects, d)
	}

	pluginCount, err := r.ReadU32()
	if err != nil {
		return nil, wrapErr(KindEOF, "ParseHeader1", "read plugin count", err)
	}
	h.Plugins = make([]PluginDep, 0, pluginCount)
	for i := uint32(0); i < pluginCount; i++ {
		var p PluginDep
		if p.Category, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseHeader1", "read plugin category", err)
		}
		if p.GUID, err = r.ReadGUID(); err != nil {
			return nil, wrapErr(KindEOF, "ParseHeader1", "read plugin guid", err)
		}
		if p.Version, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseHeader1", "read plugin version", err)
		}
		h.Plugins = append(h.Plugins, p)
	}

	// The included-file index may be entirely absent in older streams
	// (a short read here is not fatal: treat a missing count as zero).
	if r.remaining() == 0 {
		return h, nil
	}
	fileCount, err := r.ReadU32()
	if err != nil {
		return nil, wrapErr(KindEOF, "ParseHeader1", "read included-file count", err)
	}
	h.IncludedFiles = make([]IncludedFileDesc, 0, fileCount)
	for i := uint32(0); i < fileCount; i++ {
		var f IncludedFileDesc
		if f.Name, err = r.ReadCString(); err != nil {
			return nil, wrapErr(KindInvalidFormat, "ParseHeader1", "read included-file name", err)
		}
		if f.DataSize, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseHeader1", "read included-file size", err)
		}
		h.IncludedFiles = append(h.IncludedFiles, f)
	}

	return h, nil
}

// SerializeHeader1 writes the symmetric layout of h.
func SerializeHeader1(w *byteWriter, h *Header1) {
	w.WriteU32(uint32(len(h.Objects)))
	for _, d := range h.Objects {
		w.WriteU32(d.FileID)
		w.WriteU32(d.ClassID)
		w.WriteCString(d.Name)
		w.WriteU32(d.FileIndex)
		w.WriteU32(d.Flags)
	}

	w.WriteU32(uint32(len(h.Plugins)))
	for _, p := range h.Plugins {
		w.WriteU32(p.Category)
		w.WriteGUID(p.GUID)
		w.WriteU32(p.Version)
	}

	w.WriteU32(uint32(len(h.IncludedFiles)))
	for _, f := range h.IncludedFiles {
		w.WriteCString(f.Name)
		w.WriteU32(f.DataSize)
	}
}

// ObjectCount returns the number of non-reference descriptors, i.e. the
// number of ObjectBlocks expected in the Data section (spec §3 I1).
func (h *Header1) ObjectCount() int {
	n := 0
	for _, d := range h.Objects {
		if !d.IsReference() {
			n++
		}
	}
	return n
}
