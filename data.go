package nmo

// DataSection holds the decoded manager blocks and object blocks that
// follow Header1 in the unpacked Data region (spec §3: "Data section:
// manager blocks + object blocks"). Each manager block is a
// {guid, length-prefixed chunk} pair; each object block is a
// length-prefixed chunk (preceded by its file_id before file_version 7),
// correlated positionally to the non-reference
// descriptors in Header1.Objects (reference descriptors never own a
// block). Grounded on the teacher's section.go: a flat array of
// fixed-header-then-payload records read in one forward pass.
type DataSection struct {
	Managers     []*Manager
	ObjectChunks []*Chunk // parallel to the non-reference entries of Header1.Objects, in order
}

// objectBlockHasInlineFileID reports whether an ObjectBlock repeats its
// file_id inline before the chunk length, a framing dropped once Header1's
// own descriptor order became authoritative (spec §3: file_version < 7).
func objectBlockHasInlineFileID(fileVersion uint32) bool { return fileVersion < 7 }

// ParseDataSection reads managerCount manager blocks followed by one
// object block per non-reference descriptor in hdr1. fileVersion selects
// the ObjectBlock framing (inline file_id before file_version 7).
func ParseDataSection(r *byteReader, managerCount uint32, hdr1 *Header1, fileVersion uint32) (*DataSection, error) {
	ds := &DataSection{}

	for i := uint32(0); i < managerCount; i++ {
		guid, err := r.ReadGUID()
		if err != nil {
			return nil, wrapErr(KindEOF, "ParseDataSection", "read manager guid", err)
		}
		chunk, err := readLengthPrefixedChunk(r, "ParseDataSection")
		if err != nil {
			return nil, err
		}
		ds.Managers = append(ds.Managers, &Manager{GUID: guid, Chunk: chunk})
	}

	inlineID := objectBlockHasInlineFileID(fileVersion)
	for _, d := range hdr1.Objects {
		if d.IsReference() {
			continue
		}
		if inlineID {
			if _, err := r.ReadU32(); err != nil {
				return nil, wrapErr(KindEOF, "ParseDataSection", "read inline object file_id", err)
			}
		}
		chunk, err := readLengthPrefixedChunk(r, "ParseDataSection")
		if err != nil {
			return nil, err
		}
		ds.ObjectChunks = append(ds.ObjectChunks, chunk)
	}

	return ds, nil
}

func readLengthPrefixedChunk(r *byteReader, op string) (*Chunk, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, wrapErr(KindEOF, op, "read chunk length", err)
	}
	buf, err := r.ReadBytes(int(n))
	if err != nil {
		return nil, wrapErr(KindInvalidFormat, op, "truncated chunk block", err)
	}
	chunk, err := ParseChunk(buf)
	if err != nil {
		return nil, wrapErr(KindInvalidFormat, op, "parse chunk block", err)
	}
	return chunk, nil
}

// SerializeDataSection writes managers then objectChunks in the same
// shape ParseDataSection reads; fileIDs supplies the inline file_id to
// write before each object chunk when fileVersion < 7 (ignored otherwise,
// and may be nil in that case).
func SerializeDataSection(w *byteWriter, managers []*Manager, objectChunks []*Chunk, fileIDs []uint32, fileVersion uint32) {
	for _, m := range managers {
		w.WriteGUID(m.GUID)
		writeLengthPrefixedChunk(w, m.Chunk)
	}
	inlineID := objectBlockHasInlineFileID(fileVersion)
	for i, c := range objectChunks {
		if inlineID {
			w.WriteU32(fileIDs[i])
		}
		writeLengthPrefixedChunk(w, c)
	}
}

func writeLengthPrefixedChunk(w *byteWriter, c *Chunk) {
	buf := c.Serialize()
	w.WriteU32(uint32(len(buf)))
	w.WriteBytes(buf)
}
