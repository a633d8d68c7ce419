package nmo

// Manager is a GUID-keyed binary payload reserved for an engine
// subsystem, stored before objects in the Data section (spec §3).
// Grounded on the teacher's exception.go: a flat table of fixed-shape
// records parsed independently of the main object graph.
type Manager struct {
	GUID  GUID
	Chunk *Chunk
}

// ManagerHook is a best-effort callback run against a Manager during the
// pre-load, post-load, pre-save, or post-save phases (spec §4.7 phases 7/15, §4.8
// phase 2/14). A returned error is logged and the hook is skipped unless
// the session runs in strict mode (spec §7).
type ManagerHook func(m *Manager) error

// ManagerHookRegistry holds the pluggable pre-load/post-load/pre-save/
// post-save hooks per manager GUID, modeled as a first-class registry
// rather than an inline callback list (SPEC_FULL.md "Supplemented
// Features") so embedders can register subsystem-specific behavior
// without forking the pipeline.
type ManagerHookRegistry struct {
	preLoad   map[GUID][]ManagerHook
	postLoad  map[GUID][]ManagerHook
	preSave   map[GUID][]ManagerHook
	postSave  map[GUID][]ManagerHook
}

// NewManagerHookRegistry creates an empty registry.
func NewManagerHookRegistry() *ManagerHookRegistry {
	return &ManagerHookRegistry{
		preLoad:  make(map[GUID][]ManagerHook),
		postLoad: make(map[GUID][]ManagerHook),
		preSave:  make(map[GUID][]ManagerHook),
		postSave: make(map[GUID][]ManagerHook),
	}
}

func (r *ManagerHookRegistry) RegisterPreLoad(guid GUID, h ManagerHook) {
	r.preLoad[guid] = append(r.preLoad[guid], h)
}

func (r *ManagerHookRegistry) RegisterPostLoad(guid GUID, h ManagerHook) {
	r.postLoad[guid] = append(r.postLoad[guid], h)
}

func (r *ManagerHookRegistry) RegisterPreSave(guid GUID, h ManagerHook) {
	r.preSave[guid] = append(r.preSave[guid], h)
}

func (r *ManagerHookRegistry) RegisterPostSave(guid GUID, h ManagerHook) {
	r.postSave[guid] = append(r.postSave[guid], h)
}

// run invokes every hook registered for m.GUID in the given phase,
// logging and swallowing errors unless strict is true (spec §4.7 phase 7
// "best-effort; failures logged").
func (r *ManagerHookRegistry) run(hooks map[GUID][]ManagerHook, m *Manager, log *Logger, strict bool, phase string) error {
	for _, h := range hooks[m.GUID] {
		if err := h(m); err != nil {
			if strict {
				return wrapErr(KindIO, "ManagerHookRegistry."+phase, "manager hook failed", err)
			}
			log.Warnf("manager hook %s failed for %s: %v", phase, m.GUID, err)
		}
	}
	return nil
}

// ClassHookRegistry holds per-class FinishLoad hooks invoked during the
// finish-loading coordinator (spec §4.7 phase 17), separate from the
// schema registry's own optional FinishLoad so embedders can layer
// cross-cutting hooks (statistics, validation) without touching schemas.
type ClassHookRegistry struct {
	hooks map[uint32][]func(obj *Object, repo Repository) error
}

func NewClassHookRegistry() *ClassHookRegistry {
	return &ClassHookRegistry{hooks: make(map[uint32][]func(obj *Object, repo Repository) error)}
}

func (r *ClassHookRegistry) Register(classID uint32, h func(obj *Object, repo Repository) error) {
	r.hooks[classID] = append(r.hooks[classID], h)
}

func (r *ClassHookRegistry) run(obj *Object, repo Repository) error {
	for _, h := range r.hooks[obj.ClassID] {
		if err := h(obj, repo); err != nil {
			return err
		}
	}
	return nil
}
