package nmo

import (
	"errors"
	"testing"
)

func TestFinishLoaderResolvesAndRunsHooks(t *testing.T) {
	repo := NewRepository(0)
	target := &Object{ClassID: 1, Name: "Target"}
	repo.Add(target)
	holder := &Object{ClassID: 2, Name: "Holder"}
	repo.Add(holder)

	resolver := NewReferenceResolver()
	var resolvedTo *Object
	resolver.Add(PendingReference{ClassID: 1, Name: "Target", OnResolved: func(o *Object) { resolvedTo = o }})

	schemas := NewSchemaRegistry()
	var finishLoadRan bool
	schemas.Register(2, Schema{FinishLoad: func(obj *Object, repo Repository) error {
		finishLoadRan = true
		return nil
	}})

	classHooks := NewClassHookRegistry()
	var classHookRan bool
	classHooks.Register(2, func(obj *Object, repo Repository) error {
		classHookRan = true
		return nil
	})

	fl := NewFinishLoader(resolver, classHooks, schemas)
	stats, err := fl.Run(repo, false, NopLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Resolved != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if resolvedTo != target {
		t.Fatal("resolver did not resolve to the target object")
	}
	if !finishLoadRan || !classHookRan {
		t.Fatalf("finishLoadRan=%v classHookRan=%v, want both true", finishLoadRan, classHookRan)
	}
}

func TestFinishLoaderNonStrictUnresolvedDoesNotAbort(t *testing.T) {
	repo := NewRepository(0)
	resolver := NewReferenceResolver()
	resolver.Add(PendingReference{ClassID: 1, Name: "Missing"})

	fl := NewFinishLoader(resolver, nil, nil)
	stats, err := fl.Run(repo, false, NopLogger())
	if err != nil {
		t.Fatalf("non-strict run should not abort on unresolved references, got %v", err)
	}
	if stats.Unresolved != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestFinishLoaderStrictUnresolvedAborts(t *testing.T) {
	repo := NewRepository(0)
	resolver := NewReferenceResolver()
	resolver.Add(PendingReference{ClassID: 1, Name: "Missing"})

	fl := NewFinishLoader(resolver, nil, nil)
	_, err := fl.Run(repo, true, NopLogger())
	if err == nil {
		t.Fatal("expected strict run to abort on unresolved references")
	}
	if kind, ok := KindOf(err); !ok || kind != KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestFinishLoaderStrictSchemaFailureAborts(t *testing.T) {
	repo := NewRepository(0)
	repo.Add(&Object{ClassID: 1, Name: "x"})

	schemas := NewSchemaRegistry()
	schemas.Register(1, Schema{FinishLoad: func(obj *Object, repo Repository) error {
		return errors.New("boom")
	}})

	fl := NewFinishLoader(nil, nil, schemas)
	_, err := fl.Run(repo, true, NopLogger())
	if err == nil {
		t.Fatal("expected strict run to abort on a schema finish-load failure")
	}
	if kind, ok := KindOf(err); !ok || kind != KindValidationFailed {
		t.Fatalf("expected KindValidationFailed, got %v", err)
	}
}
