package nmo

import "testing"

func TestResolverDefaultExactMatch(t *testing.T) {
	repo := NewRepository(0)
	target := &Object{ClassID: 5, Name: "Hull"}
	repo.Add(target)

	r := NewReferenceResolver()
	var resolved *Object
	r.Add(PendingReference{ClassID: 5, Name: "Hull", OnResolved: func(o *Object) { resolved = o }})

	_, stats, unresolved := r.ResolveAll(repo)
	if stats.Resolved != 1 || stats.Unresolved != 0 || stats.Ambiguous != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(unresolved) != 0 {
		t.Fatalf("unresolved = %+v", unresolved)
	}
	if resolved != target {
		t.Fatal("OnResolved callback did not fire with the matched object")
	}
}

func TestResolverFuzzyIsAmbiguous(t *testing.T) {
	repo := NewRepository(0)
	repo.Add(&Object{ClassID: 5, Name: "hull"})

	r := NewReferenceResolver()
	r.Add(PendingReference{ClassID: 5, Name: "Hull"})

	_, stats, _ := r.ResolveAll(repo)
	if stats.Resolved != 1 || stats.Ambiguous != 1 {
		t.Fatalf("stats = %+v, want resolved=1 ambiguous=1 (fuzzy match)", stats)
	}
}

func TestResolverUnresolved(t *testing.T) {
	repo := NewRepository(0)
	r := NewReferenceResolver()
	r.Add(PendingReference{ClassID: 5, Name: "Nonexistent"})

	_, stats, unresolved := r.ResolveAll(repo)
	if stats.Unresolved != 1 || len(unresolved) != 1 {
		t.Fatalf("stats = %+v, unresolved = %+v", stats, unresolved)
	}
}

func TestResolverCustomStrategyTakesPriority(t *testing.T) {
	repo := NewRepository(0)
	exact := &Object{ClassID: 5, Name: "Hull"}
	other := &Object{ClassID: 5, Name: "Other"}
	repo.Add(exact)
	repo.Add(other)

	r := NewReferenceResolver()
	r.RegisterCustom(5, func(repo Repository, ref PendingReference) (*Object, bool, bool) {
		return other, true, false
	})
	var resolved *Object
	r.Add(PendingReference{ClassID: 5, Name: "Hull", OnResolved: func(o *Object) { resolved = o }})

	r.ResolveAll(repo)
	if resolved != other {
		t.Fatal("custom strategy should have taken priority over the default exact match")
	}
}

func TestResolverDeterministic(t *testing.T) {
	repo := NewRepository(0)
	repo.Add(&Object{ClassID: 1, Name: "A"})
	repo.Add(&Object{ClassID: 2, Name: "B"})

	r1 := NewReferenceResolver()
	r1.Add(PendingReference{ClassID: 1, Name: "A"})
	r1.Add(PendingReference{ClassID: 2, Name: "missing"})
	_, stats1, _ := r1.ResolveAll(repo)

	r2 := NewReferenceResolver()
	r2.Add(PendingReference{ClassID: 1, Name: "A"})
	r2.Add(PendingReference{ClassID: 2, Name: "missing"})
	_, stats2, _ := r2.ResolveAll(repo)

	if stats1 != stats2 {
		t.Fatalf("resolving the same pending set twice gave different stats: %+v vs %+v", stats1, stats2)
	}
}
