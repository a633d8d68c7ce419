package main

import (
	"os"

	"github.com/doyaGu/libnmo-sub006"
)

// exitCodeFor maps a Kind to a process exit code, matching the spec's
// "exit 0 on success, non-zero with a single-line error" CLI contract.
// The mapping itself is this command's own choice.
func exitCodeFor(err error) int {
	kind, ok := nmo.KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case nmo.KindInvalidArgument:
		return 2
	case nmo.KindInvalidSignature, nmo.KindUnsupportedVersion, nmo.KindInvalidFormat:
		return 3
	case nmo.KindEOF, nmo.KindIO:
		return 4
	case nmo.KindCompressionError:
		return 5
	case nmo.KindMissingPlugin:
		return 6
	default:
		return 1
	}
}

func fileMode() os.FileMode { return 0o644 }
