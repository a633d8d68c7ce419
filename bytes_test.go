package nmo

import "testing"

func TestByteReaderWriterRoundTrip(t *testing.T) {
	w := newByteWriter()
	w.WriteU32(0xDEADBEEF)
	w.WriteI32(-42)
	w.WriteF32(3.5)
	w.WriteString("hello")
	w.WriteCString("world")
	w.WriteGUID(GUID{D1: 1, D2: 2})

	r := newByteReader(w.Bytes())
	if v, err := r.ReadU32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("ReadU32 = %d, %v", v, err)
	}
	if v, err := r.ReadI32(); err != nil || v != -42 {
		t.Fatalf("ReadI32 = %d, %v", v, err)
	}
	if v, err := r.ReadF32(); err != nil || v != 3.5 {
		t.Fatalf("ReadF32 = %v, %v", v, err)
	}
	if s, err := r.ReadString(); err != nil || s != "hello" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	if s, err := r.ReadCString(); err != nil || s != "world" {
		t.Fatalf("ReadCString = %q, %v", s, err)
	}
	if g, err := r.ReadGUID(); err != nil || g != (GUID{D1: 1, D2: 2}) {
		t.Fatalf("ReadGUID = %v, %v", g, err)
	}
}

func TestByteReaderShortRead(t *testing.T) {
	r := newByteReader([]byte{1, 2, 3})
	if _, err := r.ReadU32(); err == nil {
		t.Fatal("expected short-read error")
	} else if kind, ok := KindOf(err); !ok || kind != KindEOF {
		t.Fatalf("expected KindEOF, got %v", err)
	}
}

func TestReadCStringUnterminated(t *testing.T) {
	r := newByteReader([]byte("no-nul"))
	if _, err := r.ReadCString(); err == nil {
		t.Fatal("expected error for unterminated cstring")
	}
}

func TestIsBitSetAndAlignUp(t *testing.T) {
	if !IsBitSet(0b1010, 1) || IsBitSet(0b1010, 0) {
		t.Fatal("IsBitSet mismatch")
	}
	if got := alignUp(5, 4); got != 8 {
		t.Fatalf("alignUp(5,4) = %d, want 8", got)
	}
	if got := alignUp(8, 4); got != 8 {
		t.Fatalf("alignUp(8,4) = %d, want 8", got)
	}
}
