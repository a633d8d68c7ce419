package nmo

import "testing"

// FuzzParseFileHeader exercises FileHeader parsing against arbitrary
// byte strings: it must never panic regardless of how malformed the
// input is.
func FuzzParseFileHeader(f *testing.F) {
	good := sampleHeaderBytes(9)
	f.Add(good)
	f.Add([]byte{})
	f.Add(make([]byte, part0Size))
	f.Add(make([]byte, headerSize(9)))

	f.Fuzz(func(t *testing.T, data []byte) {
		r := newByteReader(data)
		_, _ = ParseFileHeader(r)
	})
}

// FuzzParseChunk exercises chunk parsing against arbitrary byte strings:
// it must never panic regardless of how malformed the input is.
func FuzzParseChunk(f *testing.F) {
	c := NewChunk(7)
	c.WriteDword(1)
	c.WriteObjectID(2)
	c.WriteString("x")
	f.Add(c.Serialize())
	f.Add([]byte{})
	f.Add([]byte{1, 2, 3})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = ParseChunk(data)
	})
}

// sampleHeaderBytes serializes sampleHeader(version) for seeding the
// fuzz corpus.
func sampleHeaderBytes(version uint32) []byte {
	h := sampleHeader(version)
	w := newByteWriter()
	SerializeFileHeader(w, h)
	return w.Bytes()
}
