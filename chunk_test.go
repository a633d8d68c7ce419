package nmo

import "testing"

func TestChunkScalarRoundTrip(t *testing.T) {
	c := NewChunk(42)
	c.WriteDword(7)
	c.WriteInt(-3)
	c.WriteFloat(1.25)
	c.WriteByte(0xAB)
	c.WriteString("name")

	c.Reset()
	if v, err := c.ReadDword(); err != nil || v != 7 {
		t.Fatalf("ReadDword = %d, %v", v, err)
	}
	if v, err := c.ReadInt(); err != nil || v != -3 {
		t.Fatalf("ReadInt = %d, %v", v, err)
	}
	if v, err := c.ReadFloat(); err != nil || v != 1.25 {
		t.Fatalf("ReadFloat = %v, %v", v, err)
	}
	if v, err := c.ReadByte(); err != nil || v != 0xAB {
		t.Fatalf("ReadByte = %v, %v", v, err)
	}
	if s, err := c.ReadString(); err != nil || s != "name" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
}

func TestChunkObjectIDAndRemap(t *testing.T) {
	c := NewChunk(1)
	c.WriteObjectID(100)
	c.WriteObjectID(200 | ReferenceBit)

	if c.Options&ChunkHasIDs == 0 {
		t.Fatal("expected HAS_IDS to be set")
	}

	table := map[uint32]uint32{100: 1000, 200: 2000}
	remapped, missing := c.RemapObjectIDs(table)
	if remapped != 2 || missing != 0 {
		t.Fatalf("RemapObjectIDs = (%d, %d), want (2, 0)", remapped, missing)
	}

	c.Reset()
	if v, err := c.ReadObjectID(); err != nil || v != 1000 {
		t.Fatalf("ReadObjectID[0] = %d, %v", v, err)
	}
	if v, err := c.ReadObjectID(); err != nil || v != 2000|ReferenceBit {
		t.Fatalf("ReadObjectID[1] = %#x, %v, want %#x", v, err, 2000|ReferenceBit)
	}
}

func TestChunkRemapIdentityIsNoop(t *testing.T) {
	c := NewChunk(1)
	c.WriteObjectID(55)
	before := append([]byte(nil), c.Data...)

	identity := map[uint32]uint32{55: 55}
	c.RemapObjectIDs(identity)

	if string(before) != string(c.Data) {
		t.Fatal("identity remap modified chunk data")
	}
}

func TestChunkRemapMissingIsNotFatal(t *testing.T) {
	c := NewChunk(1)
	c.WriteObjectID(9)
	remapped, missing := c.RemapObjectIDs(map[uint32]uint32{})
	if remapped != 0 || missing != 1 {
		t.Fatalf("RemapObjectIDs = (%d, %d), want (0, 1)", remapped, missing)
	}
}

func TestChunkArrays(t *testing.T) {
	c := NewChunk(2)
	c.WriteIntArray([]int32{1, -2, 3})
	c.WriteFloatArray([]float32{0.5, -0.5})
	c.WriteStringArray([]string{"a", "bb"})
	c.WriteByteArray([]byte{9, 8, 7})

	c.Reset()
	ints, err := c.ReadIntArray()
	if err != nil || len(ints) != 3 || ints[1] != -2 {
		t.Fatalf("ReadIntArray = %v, %v", ints, err)
	}
	floats, err := c.ReadFloatArray()
	if err != nil || len(floats) != 2 || floats[0] != 0.5 {
		t.Fatalf("ReadFloatArray = %v, %v", floats, err)
	}
	strs, err := c.ReadStringArray()
	if err != nil || len(strs) != 2 || strs[1] != "bb" {
		t.Fatalf("ReadStringArray = %v, %v", strs, err)
	}
	bytes, err := c.ReadByteArray()
	if err != nil || len(bytes) != 3 || bytes[2] != 7 {
		t.Fatalf("ReadByteArray = %v, %v", bytes, err)
	}
}

func TestChunkIdentifierSeek(t *testing.T) {
	c := NewChunk(3)
	c.WriteDword(1)
	c.WriteIdentifier(0xCAFE)
	c.WriteDword(2)

	c.Reset()
	if !c.SeekIdentifier(0xCAFE) {
		t.Fatal("expected to find identifier")
	}
	if v, err := c.ReadDword(); err != nil || v != 2 {
		t.Fatalf("ReadDword after seek = %d, %v", v, err)
	}
}

func TestChunkSerializeParseRoundTrip(t *testing.T) {
	c := NewChunk(77)
	c.WriteObjectID(5)
	c.RawTail = []byte{1, 2, 3}

	buf := c.Serialize()
	got, err := ParseChunk(buf)
	if err != nil {
		t.Fatalf("ParseChunk: %v", err)
	}
	if got.ClassID != 77 || len(got.IDs) != 1 || string(got.RawTail) != "\x01\x02\x03" {
		t.Fatalf("parsed chunk mismatch: %+v", got)
	}
}

func TestChunkClone(t *testing.T) {
	c := NewChunk(1)
	c.WriteObjectID(1)
	cp := c.Clone()
	cp.RemapObjectIDs(map[uint32]uint32{1: 2})

	c.Reset()
	orig, _ := c.ReadObjectID()
	if orig != 1 {
		t.Fatalf("Clone should not affect the original chunk, got %d", orig)
	}
}
