package nmo

// Signature is the fixed 8-byte magic that opens every Nemo container
// (spec §3 FileHeader.signature).
var Signature = [8]byte{'N', 'e', 'm', 'o', ' ', 'F', 'i', 0}

const (
	// MinFileVersion and MaxFileVersion bound the supported file_version
	// range, inclusive (spec §3, §4.3).
	MinFileVersion = 2
	MaxFileVersion = 9

	// Part1Version is the first file_version that carries a Part1 block
	// (spec §3, §8 P8).
	Part1Version = 5

	// part0Size and part1Size are each fixed at 32 bytes on the wire
	// (spec §3): Part0 is signature(8) + 6 u32 fields; Part1 is 8 u32
	// fields.
	part0Size = 32
	part1Size = 32
)

// Write-mode bits for FileHeader.file_write_mode (spec §3).
const (
	WriteModeCompressHeader1 = 1 << 0
	WriteModeCompressData    = 1 << 1
)

// FileHeader is the fixed-layout prefix of every container: Part0 always,
// Part1 when file_version >= Part1Version (spec §3).
//
// For file_version < Part1Version, Part1 is entirely absent from the
// wire: there is no stored manager_count/object_count/hdr1_unpack_size to
// read. The load pipeline resolves those fields for legacy files by
// treating Header1/Data as uncompressed and sizing the Data section from
// the remaining stream length rather than a stored size (an explicit
// resolution of the open question in spec §9 — see DESIGN.md).
type FileHeader struct {
	CRC            uint32
	CKVersion      uint32
	FileVersion    uint32
	FileVersion2   uint32 // carried through unchanged; semantics unspecified (spec §9)
	FileWriteMode  uint32
	Hdr1PackSize   uint32
	DataPackSize   uint32
	DataUnpackSize uint32
	ManagerCount   uint32
	ObjectCount    uint32
	MaxIDSaved     uint32
	ProductVersion uint32
	ProductBuild   uint32
	Hdr1UnpackSize uint32
}

// HasPart1 reports whether this header's file_version carries a Part1 block.
func (h *FileHeader) HasPart1() bool { return h.FileVersion >= Part1Version }

// ParseFileHeader reads Part0 (and Part1 if file_version >= 5) from r.
// Fails with KindInvalidSignature if the magic bytes don't match and
// KindUnsupportedVersion if file_version is outside [2,9] (spec §4.3).
func ParseFileHeader(r *byteReader) (*FileHeader, error) {
	sig, err := r.ReadBytes(8)
	if err != nil {
		return nil, wrapErr(KindEOF, "ParseFileHeader", "read signature", err)
	}
	for i := range Signature {
		if sig[i] != Signature[i] {
			return nil, newErr(KindInvalidSignature, "ParseFileHeader", "magic bytes mismatch")
		}
	}

	h := &FileHeader{}
	if h.CRC, err = r.ReadU32(); err != nil {
		return nil, wrapErr(KindEOF, "ParseFileHeader", "read crc", err)
	}
	if h.CKVersion, err = r.ReadU32(); err != nil {
		return nil, wrapErr(KindEOF, "ParseFileHeader", "read ck_version", err)
	}
	if h.FileVersion, err = r.ReadU32(); err != nil {
		return nil, wrapErr(KindEOF, "ParseFileHeader", "read file_version", err)
	}
	if h.FileVersion < MinFileVersion || h.FileVersion > MaxFileVersion {
		return nil, newErr(KindUnsupportedVersion, "ParseFileHeader", "file_version out of range")
	}
	if h.FileVersion2, err = r.ReadU32(); err != nil {
		return nil, wrapErr(KindEOF, "ParseFileHeader", "read file_version2", err)
	}
	if h.FileWriteMode, err = r.ReadU32(); err != nil {
		return nil, wrapErr(KindEOF, "ParseFileHeader", "read file_write_mode", err)
	}
	if h.Hdr1PackSize, err = r.ReadU32(); err != nil {
		return nil, wrapErr(KindEOF, "ParseFileHeader", "read hdr1_pack_size", err)
	}

	if h.HasPart1() {
		if h.DataPackSize, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseFileHeader", "read data_pack_size", err)
		}
		if h.DataUnpackSize, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseFileHeader", "read data_unpack_size", err)
		}
		if h.ManagerCount, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseFileHeader", "read manager_count", err)
		}
		if h.ObjectCount, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseFileHeader", "read object_count", err)
		}
		if h.MaxIDSaved, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseFileHeader", "read max_id_saved", err)
		}
		if h.ProductVersion, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseFileHeader", "read product_version", err)
		}
		if h.ProductBuild, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseFileHeader", "read product_build", err)
		}
		if h.Hdr1UnpackSize, err = r.ReadU32(); err != nil {
			return nil, wrapErr(KindEOF, "ParseFileHeader", "read hdr1_unpack_size", err)
		}
	}
	// Legacy (file_version < 5): Part1 fields stay at their zero value;
	// the load pipeline leaves them at zero and sizes the Data section
	// from the stream instead.

	return h, nil
}

// SerializeFileHeader writes the symmetric layout of h. The CRC field is
// typically a placeholder at this point; callers rewrite it once the
// Header1/Data sections are final (spec §4.3, §4.8 phase 11/13).
func SerializeFileHeader(w *byteWriter, h *FileHeader) {
	w.WriteBytes(Signature[:])
	w.WriteU32(h.CRC)
	w.WriteU32(h.CKVersion)
	w.WriteU32(h.FileVersion)
	w.WriteU32(h.FileVersion2)
	w.WriteU32(h.FileWriteMode)
	w.WriteU32(h.Hdr1PackSize)

	if h.HasPart1() {
		w.WriteU32(h.DataPackSize)
		w.WriteU32(h.DataUnpackSize)
		w.WriteU32(h.ManagerCount)
		w.WriteU32(h.ObjectCount)
		w.WriteU32(h.MaxIDSaved)
		w.WriteU32(h.ProductVersion)
		w.WriteU32(h.ProductBuild)
		w.WriteU32(h.Hdr1UnpackSize)
	}
}

// headerSize returns the encoded size in bytes for a given file_version.
func headerSize(fileVersion uint32) int {
	if fileVersion >= Part1Version {
		return part0Size + part1Size
	}
	return part0Size
}

// checksumRange returns the Part0[12..32] slice used as the first segment
// of the Adler-32 input (spec §3: "crc over Part0[12..32] ∥ Part1 ∥ ...").
// Offset 12 is immediately after signature(8)+crc(4).
func checksumRange(part0 []byte) []byte {
	if len(part0) < part0Size {
		return nil
	}
	return part0[12:part0Size]
}
