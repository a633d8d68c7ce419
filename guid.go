package nmo

import "fmt"

// GUID is the engine's 8-byte class/type identifier: two little-endian
// u32 words, stored and compared as a value (spec §3).
type GUID struct {
	D1 uint32
	D2 uint32
}

// NilGUID is the zero-valued GUID used by objects that carry no type GUID.
var NilGUID = GUID{}

func (g GUID) IsNil() bool { return g.D1 == 0 && g.D2 == 0 }

func (g GUID) String() string {
	return fmt.Sprintf("%08x-%08x", g.D1, g.D2)
}
