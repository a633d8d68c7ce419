package nmo

import "github.com/doyaGu/libnmo-sub006/internal/nlog"

// Logger is the leveled-logging facade the core writes through for
// best-effort phases (plugin checks, manager hooks, reference resolution
// warnings) — see SPEC_FULL.md's Ambient Stack / Logging section.
type Logger = nlog.Helper

// NopLogger discards everything; used when Options.Logger is left nil in
// contexts (like tests) that don't care about log output.
func NopLogger() *Logger { return nlog.NewHelper(nlog.NopLogger()) }

// DefaultLogger mirrors the teacher's fallback: errors only, to stderr.
func DefaultLogger() *Logger { return nlog.Default() }
