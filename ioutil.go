package nmo

import "io"

// readExact reads exactly n bytes from p, wrapping a short read as
// KindEOF rather than leaking a bare io.ErrUnexpectedEOF.
func readExact(p Port, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(p, buf); err != nil {
		return nil, wrapErr(KindEOF, "readExact", "short read from port", err)
	}
	return buf, nil
}
