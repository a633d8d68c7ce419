package nmo

// FinishLoader is the finish-loading coordinator invoked as the last
// load phase (spec §4.7 phase 17): it resolves every pending reference
// queued on its resolver, then runs each object's schema-level
// FinishLoad hook followed by any registered class hooks, in repository
// insertion order. Grounded on the teacher's file.go Parse() tail, which
// runs a fixed sequence of best-effort finishing passes (anomalies,
// resource directory, debug directory) after the main parse loop.
type FinishLoader struct {
	Resolver   *ReferenceResolver
	ClassHooks *ClassHookRegistry
	Schemas    SchemaRegistry
}

// NewFinishLoader wires a resolver, class-hook registry, and schema
// registry together. Any of them may be left nil to skip that stage.
func NewFinishLoader(resolver *ReferenceResolver, classHooks *ClassHookRegistry, schemas SchemaRegistry) *FinishLoader {
	return &FinishLoader{Resolver: resolver, ClassHooks: classHooks, Schemas: schemas}
}

// Run resolves references and runs finishing hooks over every object in
// repo, in insertion order. With strict=true, any unresolved reference
// aborts the load with KindNotFound; otherwise unresolved references are
// logged and the object graph is returned as-is (spec §4.5: "unresolved
// references do not abort a non-strict load").
func (f *FinishLoader) Run(repo Repository, strict bool, log *Logger) (ResolveStats, error) {
	var stats ResolveStats

	if f.Resolver != nil {
		_, s, unresolved := f.Resolver.ResolveAll(repo)
		stats = s
		if len(unresolved) > 0 {
			if strict {
				return stats, newErr(KindNotFound, "FinishLoader.Run", "unresolved references remain in strict mode")
			}
			if log != nil {
				for _, ref := range unresolved {
					log.Warnf("unresolved reference: holder=%d class=%d name=%q", ref.Holder, ref.ClassID, ref.Name)
				}
			}
		}
	}

	for i := 0; ; i++ {
		obj, ok := repo.ByIndex(i)
		if !ok {
			break
		}
		if f.Schemas != nil {
			if schema, found := f.Schemas.FindByClass(obj.ClassID); found && schema.FinishLoad != nil {
				if err := schema.FinishLoad(obj, repo); err != nil {
					if strict {
						return stats, wrapErr(KindValidationFailed, "FinishLoader.Run", "schema finish-load failed", err)
					}
					if log != nil {
						log.Warnf("schema finish-load failed for object %d (%s): %v", obj.ID, obj.Name, err)
					}
				}
			}
		}
		if f.ClassHooks != nil {
			if err := f.ClassHooks.run(obj, repo); err != nil {
				if strict {
					return stats, wrapErr(KindValidationFailed, "FinishLoader.Run", "class hook failed", err)
				}
				if log != nil {
					log.Warnf("class hook failed for object %d (%s): %v", obj.ID, obj.Name, err)
				}
			}
		}
	}

	return stats, nil
}
