package nmo

import "testing"

func TestPipelineRoundTripMinimalEmpty(t *testing.T) {
	sess := NewSession(nil, Options{})
	port := NewMemPort(nil)
	if err := sess.Save(port, SaveConfig{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewSession(nil, Options{})
	if err := loaded.Load(NewMemPort(port.Bytes())); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Header.ObjectCount != 0 || loaded.Header.ManagerCount != 0 {
		t.Fatalf("expected an empty file, got %+v", loaded.Header)
	}
	if loaded.Repository.Count() != 0 {
		t.Fatalf("expected no objects, got %d", loaded.Repository.Count())
	}
}

func TestPipelineRoundTripSingleUnnamedObject(t *testing.T) {
	sess := NewSession(nil, Options{})
	chunk := NewChunk(3)
	chunk.WriteDword(123)
	chunk.WriteString("payload")
	sess.Repository.Add(&Object{ClassID: 3, Name: "", Chunk: chunk})

	port := NewMemPort(nil)
	if err := sess.Save(port, SaveConfig{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewSession(nil, Options{})
	if err := loaded.Load(NewMemPort(port.Bytes())); err != nil {
		t.Fatalf("Load: %v", err)
	}
	obj, ok := loaded.Repository.ByIndex(0)
	if !ok {
		t.Fatal("expected one loaded object")
	}
	if obj.ClassID != 3 || obj.Name != "" {
		t.Fatalf("loaded object mismatch: %+v", obj)
	}
	obj.Chunk.Reset()
	if v, err := obj.Chunk.ReadDword(); err != nil || v != 123 {
		t.Fatalf("ReadDword = %d, %v", v, err)
	}
	if s, err := obj.Chunk.ReadString(); err != nil || s != "payload" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
}

func TestPipelineRoundTripCompressed(t *testing.T) {
	sess := NewSession(nil, Options{})
	for i := 0; i < 20; i++ {
		chunk := NewChunk(uint32(i))
		chunk.WriteString("object number padding to make compression worthwhile")
		sess.Repository.Add(&Object{ClassID: uint32(i), Name: "obj", Chunk: chunk})
	}

	port := NewMemPort(nil)
	cfg := SaveConfig{WriteMode: WriteModeCompressHeader1 | WriteModeCompressData}
	if err := sess.Save(port, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if sess.Header.DataPackSize >= sess.Header.DataUnpackSize {
		t.Fatalf("expected Data to shrink under compression: pack=%d unpack=%d",
			sess.Header.DataPackSize, sess.Header.DataUnpackSize)
	}

	loaded := NewSession(nil, Options{})
	if err := loaded.Load(NewMemPort(port.Bytes())); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Repository.Count() != 20 {
		t.Fatalf("Count = %d, want 20", loaded.Repository.Count())
	}
}

func TestPipelineReferenceResolvesAcrossSessions(t *testing.T) {
	producer := NewSession(nil, Options{})
	placeholder := &Object{ClassID: 9, Name: "SharedMaterial", Reference: true}
	placeholderID := producer.Repository.Add(placeholder)

	holderChunk := NewChunk(1)
	holderChunk.WriteObjectID(placeholderID)
	producer.Repository.Add(&Object{ClassID: 1, Name: "Holder", Chunk: holderChunk})

	port := NewMemPort(nil)
	if err := producer.Save(port, SaveConfig{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	consumerRepo := NewRepository(0)
	target := &Object{ClassID: 9, Name: "SharedMaterial"}
	targetID := consumerRepo.Add(target)

	consumer := NewSession(consumerRepo, Options{})
	if err := consumer.Load(NewMemPort(port.Bytes())); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if consumer.Stats.Resolved != 1 || consumer.Stats.Unresolved != 0 {
		t.Fatalf("Stats = %+v", consumer.Stats)
	}

	var holder *Object
	for i := 0; ; i++ {
		obj, ok := consumer.Repository.ByIndex(i)
		if !ok {
			break
		}
		if obj.Name == "Holder" {
			holder = obj
		}
	}
	if holder == nil {
		t.Fatal("Holder object not found after load")
	}
	holder.Chunk.Reset()
	got, err := holder.Chunk.ReadObjectID()
	if err != nil {
		t.Fatalf("ReadObjectID: %v", err)
	}
	if got != targetID {
		t.Fatalf("Holder's reference = %d, want resolved target id %d", got, targetID)
	}
}

func TestPipelineTruncatedFileIsEOF(t *testing.T) {
	sess := NewSession(nil, Options{})
	sess.Repository.Add(&Object{ClassID: 1, Name: "x", Chunk: NewChunk(1)})
	port := NewMemPort(nil)
	if err := sess.Save(port, SaveConfig{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	truncated := port.Bytes()[:len(port.Bytes())-4]
	loaded := NewSession(nil, Options{})
	err := loaded.Load(NewMemPort(truncated))
	if err == nil {
		t.Fatal("expected an error loading a truncated file")
	}
	if kind, ok := KindOf(err); !ok || (kind != KindEOF && kind != KindInvalidFormat) {
		t.Fatalf("expected KindEOF or KindInvalidFormat, got %v", err)
	}
}

func TestPipelineBadSignatureIsRejected(t *testing.T) {
	sess := NewSession(nil, Options{})
	port := NewMemPort(nil)
	if err := sess.Save(port, SaveConfig{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	buf := port.Bytes()
	buf[0] = 'X'

	loaded := NewSession(nil, Options{})
	err := loaded.Load(NewMemPort(buf))
	if err == nil {
		t.Fatal("expected a signature error")
	}
	if kind, ok := KindOf(err); !ok || kind != KindInvalidSignature {
		t.Fatalf("expected KindInvalidSignature, got %v", err)
	}
}
