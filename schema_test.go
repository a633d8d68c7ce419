package nmo

import (
	"errors"
	"testing"
)

func TestSchemaRegistryRegisterAndFind(t *testing.T) {
	r := NewSchemaRegistry()
	s := Schema{
		Deserialize: func(obj *Object) error { return nil },
	}
	r.Register(7, s)

	got, ok := r.FindByClass(7)
	if !ok {
		t.Fatal("expected class 7 to be registered")
	}
	if got.Deserialize == nil {
		t.Fatal("Deserialize should not be nil on the returned schema")
	}
	if _, ok := r.FindByClass(8); ok {
		t.Fatal("class 8 was never registered")
	}
}

func TestSchemaRegistryReplace(t *testing.T) {
	r := NewSchemaRegistry()
	r.Register(1, Schema{Serialize: func(obj *Object) error { return errors.New("first") }})
	r.Register(1, Schema{Serialize: func(obj *Object) error { return nil }})

	got, _ := r.FindByClass(1)
	if err := got.Serialize(&Object{}); err != nil {
		t.Fatalf("expected the later registration to win, got %v", err)
	}
}

func TestSchemaDeserializeDrivesObjectChunk(t *testing.T) {
	r := NewSchemaRegistry()
	type decoded struct{ dword uint32 }
	var out decoded
	r.Register(42, Schema{
		Deserialize: func(obj *Object) error {
			v, err := obj.Chunk.ReadDword()
			if err != nil {
				return err
			}
			out.dword = v
			return nil
		},
	})

	c := NewChunk(42)
	c.WriteDword(99)
	c.Reset()
	obj := &Object{ClassID: 42, Chunk: c}

	schema, ok := r.FindByClass(obj.ClassID)
	if !ok {
		t.Fatal("expected a schema for class 42")
	}
	if err := schema.Deserialize(obj); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if out.dword != 99 {
		t.Fatalf("dword = %d, want 99", out.dword)
	}
}
