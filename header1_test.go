package nmo

import "testing"

func TestHeader1RoundTrip(t *testing.T) {
	h := &Header1{
		Objects: []ObjectDescriptor{
			{FileID: 0, ClassID: 10, Name: "alpha", FileIndex: 0, Flags: 1},
			{FileID: 1 | ReferenceBit, ClassID: 11, Name: "beta", FileIndex: 0, Flags: 0},
		},
		Plugins: []PluginDep{
			{Category: 1, GUID: GUID{D1: 7, D2: 8}, Version: 100},
		},
		IncludedFiles: []IncludedFileDesc{
			{Name: "tex.bmp", DataSize: 4096},
		},
	}

	w := newByteWriter()
	SerializeHeader1(w, h)

	got, err := ParseHeader1(newByteReader(w.Bytes()))
	if err != nil {
		t.Fatalf("ParseHeader1: %v", err)
	}
	if len(got.Objects) != 2 || got.Objects[1].IsReference() != true {
		t.Fatalf("object descriptors not round-tripped: %+v", got.Objects)
	}
	if got.Objects[1].PlainFileID() != 1 {
		t.Fatalf("PlainFileID = %d, want 1", got.Objects[1].PlainFileID())
	}
	if len(got.Plugins) != 1 || got.Plugins[0].GUID != (GUID{D1: 7, D2: 8}) {
		t.Fatalf("plugin deps not round-tripped: %+v", got.Plugins)
	}
	if len(got.IncludedFiles) != 1 || got.IncludedFiles[0].Name != "tex.bmp" {
		t.Fatalf("included files not round-tripped: %+v", got.IncludedFiles)
	}
	if got.ObjectCount() != 1 {
		t.Fatalf("ObjectCount = %d, want 1 (one reference descriptor excluded)", got.ObjectCount())
	}
}

func TestHeader1MissingIncludedFileListIsNotFatal(t *testing.T) {
	w := newByteWriter()
	w.WriteU32(0) // object count
	w.WriteU32(0) // plugin count
	// no included-file count at all: legacy stream

	got, err := ParseHeader1(newByteReader(w.Bytes()))
	if err != nil {
		t.Fatalf("ParseHeader1: %v", err)
	}
	if len(got.IncludedFiles) != 0 {
		t.Fatalf("expected no included files, got %d", len(got.IncludedFiles))
	}
}
