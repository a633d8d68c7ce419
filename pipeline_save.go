package nmo

// SaveConfig supplies the header-level metadata a save needs that isn't
// derivable from the repository itself. Zero values pick sensible
// defaults (current file_version, no compression).
type SaveConfig struct {
	FileVersion    uint32
	CKVersion      uint32
	FileVersion2   uint32
	ProductVersion uint32
	ProductBuild   uint32

	// WriteMode combines WriteModeCompressHeader1 / WriteModeCompressData;
	// the CLI's --compress flag sets both (spec §6).
	WriteMode uint32
}

func (c SaveConfig) withDefaults() SaveConfig {
	if c.FileVersion == 0 {
		c.FileVersion = MaxFileVersion
	}
	return c
}

// Save runs the full save pipeline: plan dense file-IDs, serialize
// manager and object chunks with their references rewritten to file-IDs,
// build Header1, emit the FileHeader twice (placeholder then final CRC),
// and append any included files outside the checksum. Grounded on the
// teacher's pattern of writing a provisional header, streaming section
// data, then seeking back to patch checksum/size fields once they're
// known (file.go's save path).
func (s *Session) Save(port Port, cfg SaveConfig) error {
	cfg = cfg.withDefaults()
	log := s.opts.Logger

	// 1: gather objects in repository order.
	var objs []*Object
	for i := 0; ; i++ {
		obj, ok := s.Repository.ByIndex(i)
		if !ok {
			break
		}
		objs = append(objs, obj)
	}

	// 2: pre-save manager hooks.
	for _, m := range s.Managers {
		if err := s.opts.ManagerHooks.run(s.opts.ManagerHooks.preSave, m, log, s.opts.Strict, "pre-save"); err != nil {
			return err
		}
	}

	// 3: build the dense ID remap plan — non-reference objects first,
	// then reference objects continuing the same sequence (spec P3).
	plan := NewSavePlan()
	for _, obj := range objs {
		if obj.Reference {
			continue
		}
		if _, err := plan.Assign(obj.ID); err != nil {
			return err
		}
	}
	refCount := 0
	for _, obj := range objs {
		if !obj.Reference {
			continue
		}
		if _, err := plan.Assign(obj.ID); err != nil {
			return err
		}
		refCount++
	}
	remap := make(map[uint32]uint32, len(objs))
	for _, obj := range objs {
		fileID, _ := plan.Lookup(obj.ID)
		remap[obj.ID] = fileID
	}

	// 4-5: serialize manager chunks and non-reference object chunks,
	// rewriting their object-ID references to file-IDs.
	managerChunks := make([]*Chunk, 0, len(s.Managers))
	for _, m := range s.Managers {
		cp := m.Chunk.Clone()
		cp.RemapObjectIDs(remap)
		managerChunks = append(managerChunks, cp)
	}
	var objectChunks []*Chunk
	var objectFileIDs []uint32
	var descriptors []ObjectDescriptor
	for _, obj := range objs {
		fileID := remap[obj.ID]
		desc := ObjectDescriptor{FileID: fileID, ClassID: obj.ClassID, Name: obj.Name, FileIndex: obj.FileIndex, Flags: obj.Flags}
		if obj.Reference {
			desc.FileID |= ReferenceBit
			descriptors = append(descriptors, desc)
			continue
		}
		descriptors = append(descriptors, desc)
		var cp *Chunk
		if obj.Chunk != nil {
			cp = obj.Chunk.Clone()
		} else {
			cp = NewChunk(obj.ClassID)
		}
		if schema, ok := s.opts.Schemas.FindByClass(obj.ClassID); ok && schema.Serialize != nil {
			if err := schema.Serialize(obj); err != nil {
				if s.opts.Strict {
					return wrapErr(KindValidationFailed, "Session.Save", "schema serialize failed", err)
				}
				log.Warnf("schema serialize failed for object %d (%s): %v", obj.ID, obj.Name, err)
			}
			if obj.Chunk != nil {
				cp = obj.Chunk.Clone()
			}
		}
		cp.RemapObjectIDs(remap)
		objectChunks = append(objectChunks, cp)
		objectFileIDs = append(objectFileIDs, fileID)
	}

	// 6: build the Data section buffer.
	dw := newByteWriter()
	SerializeDataSection(dw, managersWithChunks(s.Managers, managerChunks), objectChunks, objectFileIDs, cfg.FileVersion)
	dataUnpacked := dw.Bytes()
	dataPacked := dataUnpacked
	if cfg.WriteMode&WriteModeCompressData != 0 {
		packed, err := deflateStream(dataUnpacked, s.opts.CompressionLevel)
		if err != nil {
			return err
		}
		dataPacked = packed
	}

	// 7-8: Header1 — descriptors already built; plugin list from classes.
	hdr1 := &Header1{Objects: descriptors}
	seenClasses := make(map[uint32]bool)
	if s.opts.PluginForClass != nil {
		for _, obj := range objs {
			if seenClasses[obj.ClassID] {
				continue
			}
			seenClasses[obj.ClassID] = true
			if dep, ok := s.opts.PluginForClass(obj.ClassID); ok {
				hdr1.Plugins = append(hdr1.Plugins, dep)
			}
		}
	}
	for _, f := range s.IncludedFiles {
		hdr1.IncludedFiles = append(hdr1.IncludedFiles, IncludedFileDesc{Name: f.Name, DataSize: uint32(len(f.Data))})
	}

	// 9: serialize (and optionally compress) Header1.
	hw := newByteWriter()
	SerializeHeader1(hw, hdr1)
	hdr1Unpacked := hw.Bytes()
	hdr1Packed := hdr1Unpacked
	if cfg.WriteMode&WriteModeCompressHeader1 != 0 {
		packed, err := deflateStream(hdr1Unpacked, s.opts.CompressionLevel)
		if err != nil {
			return err
		}
		hdr1Packed = packed
	}

	// 10: compute sizes and max_id_saved.
	nonRefCount := len(objs) - refCount
	header := &FileHeader{
		CKVersion:      cfg.CKVersion,
		FileVersion:    cfg.FileVersion,
		FileVersion2:   cfg.FileVersion2,
		FileWriteMode:  cfg.WriteMode,
		Hdr1PackSize:   uint32(len(hdr1Packed)),
		DataPackSize:   uint32(len(dataPacked)),
		DataUnpackSize: uint32(len(dataUnpacked)),
		ManagerCount:   uint32(len(s.Managers)),
		ObjectCount:    uint32(nonRefCount),
		MaxIDSaved:     plan.MaxFileID(),
		ProductVersion: cfg.ProductVersion,
		ProductBuild:   cfg.ProductBuild,
		Hdr1UnpackSize: uint32(len(hdr1Unpacked)),
	}

	// 11: emit a provisional FileHeader (placeholder CRC).
	hdrBuf := newByteWriter()
	SerializeFileHeader(hdrBuf, header)
	if _, err := port.Write(hdrBuf.Bytes()); err != nil {
		return wrapErr(KindIO, "Session.Save", "write provisional header", err)
	}

	// 12: write Header1 then Data bytes.
	if _, err := port.Write(hdr1Packed); err != nil {
		return wrapErr(KindIO, "Session.Save", "write header1", err)
	}
	if _, err := port.Write(dataPacked); err != nil {
		return wrapErr(KindIO, "Session.Save", "write data section", err)
	}

	// 13: compute the checksum and rewrite the header in place.
	full := hdrBuf.Bytes()
	part0 := full[:part0Size]
	var part1 []byte
	if header.HasPart1() {
		part1 = full[part0Size:]
	}
	sum := Adler32(Adler32Seed, checksumRange(part0))
	if part1 != nil {
		sum = Adler32(sum, part1)
	}
	sum = Adler32(sum, hdr1Packed)
	sum = Adler32(sum, dataPacked)
	header.CRC = sum

	if _, err := port.Seek(0, SeekStart); err != nil {
		return wrapErr(KindIO, "Session.Save", "seek to header for checksum rewrite", err)
	}
	finalBuf := newByteWriter()
	SerializeFileHeader(finalBuf, header)
	if _, err := port.Write(finalBuf.Bytes()); err != nil {
		return wrapErr(KindIO, "Session.Save", "rewrite header with checksum", err)
	}
	s.Header = header
	s.Hdr1 = hdr1

	// 14: post-save manager hooks, then included files outside the checksum.
	for _, m := range s.Managers {
		if err := s.opts.ManagerHooks.run(s.opts.ManagerHooks.postSave, m, log, s.opts.Strict, "post-save"); err != nil {
			return err
		}
	}
	if _, err := port.Seek(0, SeekEnd); err != nil {
		return wrapErr(KindIO, "Session.Save", "seek to end for included files", err)
	}
	for _, f := range s.IncludedFiles {
		w := newByteWriter()
		w.WriteString(f.Name)
		w.WriteU32(uint32(len(f.Data)))
		w.WriteBytes(f.Data)
		if _, err := port.Write(w.Bytes()); err != nil {
			return wrapErr(KindIO, "Session.Save", "write included file", err)
		}
	}

	return nil
}

func managersWithChunks(managers []*Manager, chunks []*Chunk) []*Manager {
	out := make([]*Manager, len(managers))
	for i, m := range managers {
		out[i] = &Manager{GUID: m.GUID, Chunk: chunks[i]}
	}
	return out
}
