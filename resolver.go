package nmo

import "strings"

// PendingReference is a reference to be bound to an existing repository
// object (spec §4.5). The load pipeline queues one per Header1 reference
// descriptor (ReferenceBit set), whose target lives outside the file's
// own object list.
type PendingReference struct {
	Holder     uint32             // runtime id of the object carrying the reference
	ClassID    uint32             // expected class of the referenced object
	Name       string             // expected name of the referenced object
	TypeGUID   GUID               // populated for parameter-like objects; NilGUID otherwise
	OnResolved func(target *Object) // invoked with the resolved object, if any
}

// ResolveStrategy attempts to find the object a PendingReference names.
// found is false when the strategy has no opinion (try the next one);
// ambiguous is true when the match is not a confirmed exact identity:
// the built-in strategies set it when more than one candidate matched,
// and always for fuzzy and guid-only matches.
type ResolveStrategy func(repo Repository, ref PendingReference) (obj *Object, found bool, ambiguous bool)

// ResolveStats summarizes one ResolveAll run (spec §4.5 "exposes
// resolution statistics").
type ResolveStats struct {
	Total      int
	Resolved   int
	Unresolved int
	Ambiguous int
}

// ReferenceResolver resolves PendingReferences against a Repository
// using a per-class custom strategy when registered, falling through a
// fixed chain of general strategies otherwise. Grounded on the
// teacher's imports.go, which resolves import directory entries against
// a set of candidate DLLs by name first, then by ordinal as a fallback.
type ReferenceResolver struct {
	custom  map[uint32]ResolveStrategy
	pending []PendingReference
}

// NewReferenceResolver creates an empty resolver.
func NewReferenceResolver() *ReferenceResolver {
	return &ReferenceResolver{custom: make(map[uint32]ResolveStrategy)}
}

// RegisterCustom installs a strategy tried before the default chain for
// references expecting the given class (spec §4.5 "custom-per-class").
func (r *ReferenceResolver) RegisterCustom(classID uint32, s ResolveStrategy) {
	r.custom[classID] = s
}

// Add queues a reference to be resolved by the next ResolveAll call.
func (r *ReferenceResolver) Add(ref PendingReference) {
	r.pending = append(r.pending, ref)
}

// Pending returns a copy of every queued reference. ResolveAll does not
// remove entries, so resolved references remain in the list.
func (r *ReferenceResolver) Pending() []PendingReference {
	out := make([]PendingReference, len(r.pending))
	copy(out, r.pending)
	return out
}

// ResolveAll walks every queued reference through the strategy chain:
// custom-per-class, then default exact name+class, then a parameter
// strategy requiring type_guid to also match, then fuzzy case-insensitive
// name matching within the class, then a guid-only strategy that ignores
// class and searches by type_guid alone. The first strategy to report
// found=true wins; fuzzy and guid-only hits are also counted as
// ambiguous since they didn't confirm an exact identity match (spec
// §4.5 "ambiguous resolutions counted separately").
func (r *ReferenceResolver) ResolveAll(repo Repository) (map[uint32]*Object, ResolveStats, []PendingReference) {
	resolved := make(map[uint32]*Object)
	var unresolved []PendingReference
	stats := ResolveStats{Total: len(r.pending)}

	for i, ref := range r.pending {
		obj, ambiguous := r.resolveOne(repo, ref)
		if obj == nil {
			stats.Unresolved++
			unresolved = append(unresolved, ref)
			continue
		}
		resolved[uint32(i)] = obj
		stats.Resolved++
		if ambiguous {
			stats.Ambiguous++
		}
		if ref.OnResolved != nil {
			ref.OnResolved(obj)
		}
	}
	return resolved, stats, unresolved
}

func (r *ReferenceResolver) resolveOne(repo Repository, ref PendingReference) (*Object, bool) {
	if custom, ok := r.custom[ref.ClassID]; ok {
		if obj, found, ambiguous := custom(repo, ref); found {
			return obj, ambiguous
		}
	}
	if obj, found, ambiguous := defaultResolveStrategy(repo, ref); found {
		return obj, ambiguous
	}
	if !ref.TypeGUID.IsNil() {
		if obj, found, ambiguous := parameterResolveStrategy(repo, ref); found {
			return obj, ambiguous
		}
	}
	if obj, found, ambiguous := fuzzyResolveStrategy(repo, ref); found {
		return obj, ambiguous
	}
	if !ref.TypeGUID.IsNil() {
		if obj, found, ambiguous := guidResolveStrategy(repo, ref); found {
			return obj, ambiguous
		}
	}
	return nil, false
}

// defaultResolveStrategy requires an exact name match within the class.
func defaultResolveStrategy(repo Repository, ref PendingReference) (*Object, bool, bool) {
	if ref.Name == "" {
		return nil, false, false
	}
	var hit *Object
	count := 0
	for _, obj := range repo.ByClass(ref.ClassID) {
		if obj.ID == ref.Holder {
			continue
		}
		if obj.Name == ref.Name {
			hit = obj
			count++
		}
	}
	if count == 0 {
		return nil, false, false
	}
	return hit, true, count > 1
}

// parameterResolveStrategy additionally requires TypeGUID to match,
// for parameter-like objects that carry a type identity alongside a
// name (spec §3, §4.5).
func parameterResolveStrategy(repo Repository, ref PendingReference) (*Object, bool, bool) {
	var hit *Object
	count := 0
	for _, obj := range repo.ByClass(ref.ClassID) {
		if obj.ID == ref.Holder {
			continue
		}
		if obj.Name == ref.Name && obj.TypeGUID == ref.TypeGUID {
			hit = obj
			count++
		}
	}
	if count == 0 {
		return nil, false, false
	}
	return hit, true, count > 1
}

// fuzzyResolveStrategy matches names case-insensitively within the
// class, treating any match as ambiguous since the exact match already
// failed.
func fuzzyResolveStrategy(repo Repository, ref PendingReference) (*Object, bool, bool) {
	if ref.Name == "" {
		return nil, false, false
	}
	want := strings.ToLower(ref.Name)
	var hit *Object
	count := 0
	for _, obj := range repo.ByClass(ref.ClassID) {
		if obj.ID == ref.Holder {
			continue
		}
		if strings.ToLower(obj.Name) == want {
			hit = obj
			count++
		}
	}
	if count == 0 {
		return nil, false, false
	}
	return hit, true, true
}

// guidResolveStrategy is the last resort: it ignores class_id entirely
// and searches every object for a matching TypeGUID, useful when a
// class_id recorded in the file no longer matches the registered class
// hierarchy but the type identity still does.
func guidResolveStrategy(repo Repository, ref PendingReference) (*Object, bool, bool) {
	for i := 0; ; i++ {
		obj, ok := repo.ByIndex(i)
		if !ok {
			return nil, false, false
		}
		if obj.ID != ref.Holder && obj.TypeGUID == ref.TypeGUID {
			return obj, true, true
		}
	}
}
