package nmo

import (
	"encoding/binary"
	"math"
)

// Chunk option bits (spec §3: "option bitset (notably HAS_IDS)").
const (
	ChunkHasIDs = 1 << 0
)

// DefaultChunkVersion is the writer's current chunk_version (spec §3).
const DefaultChunkVersion = 7

// identifierSentinel marks an identifier-seekable block boundary inside a
// chunk's data stream (spec §4.1: "a writer emits a sentinel identifier
// and payload, and readers may jump to an identifier to enter that
// block"). The exact bit pattern is this codec's own choice — the spec
// leaves the wire encoding of this feature unspecified beyond its
// behavior.
const identifierSentinel = 0x4E4F4D49 // "IMON" in little-endian bytes

// Chunk is the self-describing word-stream payload of one object or
// manager (spec §3, §4.1). Data is modeled as a flat byte buffer rather
// than a literal []uint32 so that byte/string/array fields (which the
// Arrays section of spec §4.1 defines in raw byte granularity) and
// dword-granular fields (which advance the cursor "measured in words")
// can share one cursor without two incompatible representations.
// Object-ID positions recorded in IDs are always word-aligned byte
// offsets divided by 4.
type Chunk struct {
	ClassID uint32
	Version uint32
	Options uint32
	Data    []byte
	IDs     []uint32 // word-index positions inside Data holding object IDs
	RawTail []byte   // untouched trailing bytes for classes without a schema

	pos int // read/write cursor, in bytes, into Data
}

// NewChunk creates an empty chunk for classID at the writer's current
// chunk version.
func NewChunk(classID uint32) *Chunk {
	return &Chunk{ClassID: classID, Version: DefaultChunkVersion}
}

// Reset rewinds the read cursor to the start of Data.
func (c *Chunk) Reset() { c.pos = 0 }

func (c *Chunk) alignWrite4() {
	for len(c.Data)%4 != 0 {
		c.Data = append(c.Data, 0)
	}
}

func (c *Chunk) needRead(n int) error {
	if c.pos+n > len(c.Data) {
		return newErr(KindEOF, "Chunk", "short read past chunk data")
	}
	return nil
}

// --- scalar writers ---

func (c *Chunk) WriteDword(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	c.Data = append(c.Data, b[:]...)
}

func (c *Chunk) WriteInt(v int32) { c.WriteDword(uint32(v)) }

func (c *Chunk) WriteFloat(v float32) { c.WriteDword(math.Float32bits(v)) }

func (c *Chunk) WriteByte(v byte) { c.Data = append(c.Data, v) }

// WriteObjectID writes a dword and records its word-index position so
// RemapObjectIDs can rewrite it later (spec §4.1, §4.6).
func (c *Chunk) WriteObjectID(id uint32) {
	c.alignWrite4()
	c.IDs = append(c.IDs, uint32(len(c.Data)/4))
	c.WriteDword(id)
	c.Options |= ChunkHasIDs
}

func (c *Chunk) WriteString(s string) {
	c.WriteDword(uint32(len(s)))
	c.Data = append(c.Data, s...)
}

// --- scalar readers ---

func (c *Chunk) ReadDword() (uint32, error) {
	if err := c.needRead(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.Data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *Chunk) ReadInt() (int32, error) {
	v, err := c.ReadDword()
	return int32(v), err
}

func (c *Chunk) ReadFloat() (float32, error) {
	v, err := c.ReadDword()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (c *Chunk) ReadByte() (byte, error) {
	if err := c.needRead(1); err != nil {
		return 0, err
	}
	v := c.Data[c.pos]
	c.pos++
	return v, nil
}

// ReadObjectID reads a dword that was recorded as an object-ID position
// at write time. It does not itself validate that c.pos is one of IDs;
// callers that build chunks by hand are responsible for symmetry between
// WriteObjectID and ReadObjectID call order.
func (c *Chunk) ReadObjectID() (uint32, error) { return c.ReadDword() }

func (c *Chunk) ReadString() (string, error) {
	n, err := c.ReadDword()
	if err != nil {
		return "", err
	}
	if err := c.needRead(int(n)); err != nil {
		return "", wrapErr(KindInvalidFormat, "Chunk.ReadString", "truncated string", err)
	}
	s := string(c.Data[c.pos : c.pos+int(n)])
	c.pos += int(n)
	return s, nil
}

// --- generic and typed arrays (spec §4.1 "Arrays") ---

// WriteByteArray writes a generic array: {u32 elem_size, u32 count, bytes}.
func (c *Chunk) WriteByteArray(b []byte) {
	c.WriteDword(1)
	c.WriteDword(uint32(len(b)))
	c.Data = append(c.Data, b...)
}

func (c *Chunk) ReadByteArray() ([]byte, error) {
	elemSize, err := c.ReadDword()
	if err != nil {
		return nil, err
	}
	count, err := c.ReadDword()
	if err != nil {
		return nil, err
	}
	n := int(elemSize) * int(count)
	if err := c.needRead(n); err != nil {
		return nil, wrapErr(KindInvalidFormat, "Chunk.ReadByteArray", "truncated array", err)
	}
	b := c.Data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// WriteObjectIDArray writes a typed array: {u32 count, count*object_id}.
func (c *Chunk) WriteObjectIDArray(ids []uint32) {
	c.WriteDword(uint32(len(ids)))
	for _, id := range ids {
		c.WriteObjectID(id)
	}
}

func (c *Chunk) ReadObjectIDArray() ([]uint32, error) {
	count, err := c.ReadDword()
	if err != nil {
		return nil, err
	}
	ids := make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		id, err := c.ReadObjectID()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Chunk) WriteIntArray(v []int32) {
	c.WriteDword(uint32(len(v)))
	for _, x := range v {
		c.WriteInt(x)
	}
}

func (c *Chunk) ReadIntArray() ([]int32, error) {
	count, err := c.ReadDword()
	if err != nil {
		return nil, err
	}
	out := make([]int32, 0, count)
	for i := uint32(0); i < count; i++ {
		x, err := c.ReadInt()
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

func (c *Chunk) WriteFloatArray(v []float32) {
	c.WriteDword(uint32(len(v)))
	for _, x := range v {
		c.WriteFloat(x)
	}
}

func (c *Chunk) ReadFloatArray() ([]float32, error) {
	count, err := c.ReadDword()
	if err != nil {
		return nil, err
	}
	out := make([]float32, 0, count)
	for i := uint32(0); i < count; i++ {
		x, err := c.ReadFloat()
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

func (c *Chunk) WriteStringArray(v []string) {
	c.WriteDword(uint32(len(v)))
	for _, s := range v {
		c.WriteString(s)
	}
}

func (c *Chunk) ReadStringArray() ([]string, error) {
	count, err := c.ReadDword()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		s, err := c.ReadString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// --- identifier-seekable blocks ---

// WriteIdentifier emits a sentinel marker for id at the current position
// so a later reader can jump directly to the block that follows it.
func (c *Chunk) WriteIdentifier(id uint32) {
	c.alignWrite4()
	c.WriteDword(identifierSentinel)
	c.WriteDword(id)
}

// SeekIdentifier scans forward from the current position for id's
// sentinel marker and repositions the cursor just past it, returning
// true on success. It leaves the cursor unchanged if id is not found.
func (c *Chunk) SeekIdentifier(id uint32) bool {
	for i := c.pos; i+8 <= len(c.Data); i += 4 {
		if binary.LittleEndian.Uint32(c.Data[i:]) == identifierSentinel &&
			binary.LittleEndian.Uint32(c.Data[i+4:]) == id {
			c.pos = i + 8
			return true
		}
	}
	return false
}

// --- whole-chunk (de)serialization, used by Data-section codec ---

// Serialize produces the self-describing chunk_bytes stored in an
// ObjectBlock or ManagerBlock (spec §3).
func (c *Chunk) Serialize() []byte {
	w := newByteWriter()
	w.WriteU32(c.ClassID)
	w.WriteU32(c.Version)
	w.WriteU32(c.Options)
	w.WriteU32(uint32(len(c.Data)))
	w.WriteBytes(c.Data)
	if c.Options&ChunkHasIDs != 0 {
		w.WriteU32(uint32(len(c.IDs)))
		for _, p := range c.IDs {
			w.WriteU32(p)
		}
	}
	w.WriteU32(uint32(len(c.RawTail)))
	w.WriteBytes(c.RawTail)
	return w.Bytes()
}

// ParseChunk decodes a chunk previously produced by Serialize.
func ParseChunk(buf []byte) (*Chunk, error) {
	r := newByteReader(buf)

	c := &Chunk{}
	var err error
	if c.ClassID, err = r.ReadU32(); err != nil {
		return nil, wrapErr(KindEOF, "ParseChunk", "read class_id", err)
	}
	if c.Version, err = r.ReadU32(); err != nil {
		return nil, wrapErr(KindEOF, "ParseChunk", "read chunk_version", err)
	}
	if c.Options, err = r.ReadU32(); err != nil {
		return nil, wrapErr(KindEOF, "ParseChunk", "read options", err)
	}
	dataLen, err := r.ReadU32()
	if err != nil {
		return nil, wrapErr(KindEOF, "ParseChunk", "read data length", err)
	}
	if c.Data, err = r.ReadBytes(int(dataLen)); err != nil {
		return nil, wrapErr(KindInvalidFormat, "ParseChunk", "truncated data", err)
	}
	c.Data = append([]byte(nil), c.Data...) // detach from the shared input buffer

	if c.Options&ChunkHasIDs != 0 {
		idCount, err := r.ReadU32()
		if err != nil {
			return nil, wrapErr(KindEOF, "ParseChunk", "read id count", err)
		}
		c.IDs = make([]uint32, 0, idCount)
		for i := uint32(0); i < idCount; i++ {
			p, err := r.ReadU32()
			if err != nil {
				return nil, wrapErr(KindEOF, "ParseChunk", "read id entry", err)
			}
			c.IDs = append(c.IDs, p)
		}
	}

	rawLen, err := r.ReadU32()
	if err != nil {
		return nil, wrapErr(KindEOF, "ParseChunk", "read raw tail length", err)
	}
	raw, err := r.ReadBytes(int(rawLen))
	if err != nil {
		return nil, wrapErr(KindInvalidFormat, "ParseChunk", "truncated raw tail", err)
	}
	c.RawTail = append([]byte(nil), raw...)

	return c, nil
}

// Clone returns a deep copy, safe to remap or mutate without affecting
// the original (used by the save pipeline so remapping object-IDs into
// file-IDs never disturbs a session's live runtime chunks).
func (c *Chunk) Clone() *Chunk {
	cp := &Chunk{ClassID: c.ClassID, Version: c.Version, Options: c.Options, pos: c.pos}
	cp.Data = append([]byte(nil), c.Data...)
	cp.IDs = append([]uint32(nil), c.IDs...)
	cp.RawTail = append([]byte(nil), c.RawTail...)
	return cp
}

// RemapObjectIDs rewrites every recorded ID position through table,
// preserving the reference-flag bit (spec §4.6). Positions whose mapped
// value is missing are left untouched and reported via the returned
// missing count rather than failing the call.
func (c *Chunk) RemapObjectIDs(table map[uint32]uint32) (remapped, missing int) {
	for _, wordPos := range c.IDs {
		byteOff := int(wordPos) * 4
		if byteOff+4 > len(c.Data) {
			missing++
			continue
		}
		raw := binary.LittleEndian.Uint32(c.Data[byteOff:])
		isRef := raw&ReferenceBit != 0
		plain := raw &^ ReferenceBit

		mapped, ok := table[plain]
		if !ok {
			missing++
			continue
		}
		if isRef {
			mapped |= ReferenceBit
		}
		binary.LittleEndian.PutUint32(c.Data[byteOff:], mapped)
		remapped++
	}
	return remapped, missing
}
