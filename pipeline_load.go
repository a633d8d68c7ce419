package nmo

import "encoding/binary"

// Load runs the full load pipeline over port: parse the headers, inflate
// and parse Header1 and the Data section, materialize runtime objects,
// remap every chunk's object-ID references, deserialize via the schema
// registry, resolve reference descriptors, and run finishing hooks.
// Phases execute strictly in order; the first error aborts the pipeline
// (spec §4.7, §5 "ordering guarantees"). Grounded on the teacher's
// File.Parse() in pe.go: a fixed sequence of "parse this section, then
// the next" steps, each able to fail independently.
func (s *Session) Load(port Port) error {
	log := s.opts.Logger

	// 1-2: parse FileHeader (Part0, and Part1 when present).
	header, err := readFileHeader(port)
	if err != nil {
		return err
	}
	s.Header = header

	// 3-4: read (and inflate, if applicable) Header1 bytes, then parse them.
	hdr1Raw, err := readExact(port, int(header.Hdr1PackSize))
	if err != nil {
		return wrapErr(KindEOF, "Session.Load", "read header1 bytes", err)
	}
	hdr1Bytes, err := inflateSection(hdr1Raw, header.HasPart1(), header.Hdr1PackSize, header.Hdr1UnpackSize)
	if err != nil {
		return wrapErr(KindInvalidFormat, "Session.Load", "inflate header1", err)
	}
	hdr1, err := ParseHeader1(newByteReader(hdr1Bytes))
	if err != nil {
		return err
	}
	s.Hdr1 = hdr1

	// 5: start the load session's ID bookkeeping.
	loadSession := NewLoadSession(s.Repository.MaxID())

	// 6: check plugin dependencies.
	if s.opts.PluginAvailable != nil {
		for _, p := range hdr1.Plugins {
			if s.opts.PluginAvailable(p.Category, p.GUID) {
				continue
			}
			if s.opts.Strict {
				return newErr(KindMissingPlugin, "Session.Load", "required plugin not available: "+p.GUID.String())
			}
			log.Warnf("plugin dependency unavailable: category=%d guid=%s", p.Category, p.GUID)
		}
	}

	// 7-8: read (and inflate, if applicable) Data bytes, then parse managers
	// and object chunks out of it.
	dataSize := header.DataPackSize
	if !header.HasPart1() {
		remaining, rerr := remainingBeforeIncludedFiles(port, hdr1)
		if rerr != nil {
			return rerr
		}
		dataSize = uint32(remaining)
	}
	dataRaw, err := readExact(port, int(dataSize))
	if err != nil {
		return wrapErr(KindEOF, "Session.Load", "read data section bytes", err)
	}
	dataBytes, err := inflateSection(dataRaw, header.HasPart1(), header.DataPackSize, header.DataUnpackSize)
	if err != nil {
		return wrapErr(KindInvalidFormat, "Session.Load", "inflate data section", err)
	}
	managerCount := header.ManagerCount
	data, err := ParseDataSection(newByteReader(dataBytes), managerCount, hdr1, header.FileVersion)
	if err != nil {
		return err
	}
	s.Managers = data.Managers

	// Best-effort manager hooks run against the chunks as parsed, before
	// any ID remapping touches them.
	for _, m := range s.Managers {
		if err := s.opts.ManagerHooks.run(s.opts.ManagerHooks.preLoad, m, log, s.opts.Strict, "pre-load"); err != nil {
			return err
		}
	}

	// 9-11: materialize a runtime object (or an unresolved-reference
	// placeholder) for every descriptor, attach its chunk, and validate
	// the object/chunk counts agree.
	if len(hdr1.Objects) == 0 && len(data.ObjectChunks) != 0 {
		return newErr(KindInvalidFormat, "Session.Load", "data section has object chunks but header1 declares none")
	}
	type boundObject struct {
		obj       *Object
		isRef     bool
		refDesc   ObjectDescriptor
	}
	bound := make([]boundObject, 0, len(hdr1.Objects))
	chunkIdx := 0
	for _, d := range hdr1.Objects {
		if d.IsReference() {
			placeholder := &Object{ClassID: d.ClassID, Name: d.Name, Flags: d.Flags, FileIndex: d.FileIndex}
			runtimeID := s.Repository.Add(placeholder)
			if err := loadSession.Register(d.PlainFileID(), runtimeID); err != nil {
				return err
			}
			bound = append(bound, boundObject{obj: placeholder, isRef: true, refDesc: d})
			continue
		}
		if chunkIdx >= len(data.ObjectChunks) {
			return newErr(KindInvalidFormat, "Session.Load", "fewer object chunks than non-reference descriptors")
		}
		chunk := data.ObjectChunks[chunkIdx]
		chunkIdx++
		obj := &Object{ClassID: d.ClassID, Name: d.Name, Flags: d.Flags, Chunk: chunk, FileIndex: d.FileIndex}
		runtimeID := s.Repository.Add(obj)
		if err := loadSession.Register(d.PlainFileID(), runtimeID); err != nil {
			return err
		}
		bound = append(bound, boundObject{obj: obj})
	}
	if chunkIdx != len(data.ObjectChunks) {
		return newErr(KindInvalidFormat, "Session.Load", "more object chunks than non-reference descriptors")
	}

	// 12-13: build the file_id -> runtime_id table and rewrite every
	// object-ID reference inside manager and object chunks.
	remapTable := loadSession.BuildRemapTable()
	for _, m := range s.Managers {
		m.Chunk.RemapObjectIDs(remapTable)
	}
	for _, b := range bound {
		if b.obj.Chunk != nil {
			b.obj.Chunk.RemapObjectIDs(remapTable)
		}
	}

	// 14: deserialize each object through its class's schema, if any.
	for _, b := range bound {
		if b.isRef {
			continue
		}
		if schema, ok := s.opts.Schemas.FindByClass(b.obj.ClassID); ok && schema.Deserialize != nil {
			if err := schema.Deserialize(b.obj); err != nil {
				if s.opts.Strict {
					return wrapErr(KindValidationFailed, "Session.Load", "schema deserialize failed", err)
				}
				log.Warnf("schema deserialize failed for object %d (%s): %v", b.obj.ID, b.obj.Name, err)
			}
		}
	}

	// 15: post-load manager hooks.
	for _, m := range s.Managers {
		if err := s.opts.ManagerHooks.run(s.opts.ManagerHooks.postLoad, m, log, s.opts.Strict, "post-load"); err != nil {
			return err
		}
	}

	// 16: read included files, bound by Header1's own count.
	includedFiles, err := readIncludedFiles(port, len(hdr1.IncludedFiles))
	if err != nil {
		return err
	}
	s.IncludedFiles = includedFiles

	// 17: finish-loading — queue reference descriptors for resolution,
	// resolve them, alias any chunk references from the placeholder's
	// runtime id to the resolved object's runtime id, then run class and
	// schema finish-load hooks.
	aliases := make(map[uint32]uint32)
	for _, b := range bound {
		if !b.isRef {
			continue
		}
		placeholderID := b.obj.ID
		s.opts.Resolver.Add(PendingReference{
			Holder:  placeholderID,
			ClassID: b.refDesc.ClassID,
			Name:    b.refDesc.Name,
			OnResolved: func(target *Object) {
				aliases[placeholderID] = target.ID
			},
		})
	}
	finisher := NewFinishLoader(s.opts.Resolver, s.opts.ClassHooks, s.opts.Schemas)
	stats, err := finisher.Run(s.Repository, s.opts.Strict, log)
	if err != nil {
		return err
	}
	s.Stats = stats

	if len(aliases) > 0 {
		for _, m := range s.Managers {
			m.Chunk.RemapObjectIDs(aliases)
		}
		for _, b := range bound {
			if b.obj.Chunk != nil {
				b.obj.Chunk.RemapObjectIDs(aliases)
			}
		}
	}

	return nil
}

// readFileHeader reads Part0, peeks file_version to learn whether Part1
// follows, reads it if so, then parses the combined buffer.
func readFileHeader(port Port) (*FileHeader, error) {
	part0, err := readExact(port, part0Size)
	if err != nil {
		return nil, wrapErr(KindEOF, "readFileHeader", "read part0", err)
	}
	for i := range Signature {
		if part0[i] != Signature[i] {
			return nil, newErr(KindInvalidSignature, "readFileHeader", "magic bytes mismatch")
		}
	}

	buf := part0
	fileVersion := binary.LittleEndian.Uint32(part0[16:20])
	if fileVersion >= Part1Version && fileVersion <= MaxFileVersion {
		part1, err := readExact(port, part1Size)
		if err != nil {
			return nil, wrapErr(KindEOF, "readFileHeader", "read part1", err)
		}
		buf = append(buf, part1...)
	}
	return ParseFileHeader(newByteReader(buf))
}

// inflateSection returns raw as-is for legacy headers (no Part1, no
// unpack size known) or when pack/unpack sizes agree (stored
// uncompressed); otherwise it inflates raw to exactly unpackSize.
func inflateSection(raw []byte, hasPart1 bool, packSize, unpackSize uint32) ([]byte, error) {
	if !hasPart1 || packSize == unpackSize {
		return raw, nil
	}
	return inflateStream(raw, int(unpackSize))
}

// remainingBeforeIncludedFiles sizes the Data section for legacy headers
// that carry no data_pack_size: everything up to the included-file
// trailer belongs to Data. Since the port has no stat contract, this
// seeks to the end, measures, then seeks back to the current position.
func remainingBeforeIncludedFiles(port Port, hdr1 *Header1) (int64, error) {
	cur, err := port.Tell()
	if err != nil {
		return 0, wrapErr(KindIO, "remainingBeforeIncludedFiles", "tell", err)
	}
	end, err := port.Seek(0, SeekEnd)
	if err != nil {
		return 0, wrapErr(KindIO, "remainingBeforeIncludedFiles", "seek end", err)
	}
	if _, err := port.Seek(cur, SeekStart); err != nil {
		return 0, wrapErr(KindIO, "remainingBeforeIncludedFiles", "seek back", err)
	}
	trailer := int64(0)
	for _, f := range hdr1.IncludedFiles {
		trailer += 4 + int64(len(f.Name)) + 4 + int64(f.DataSize)
	}
	remaining := end - cur - trailer
	if remaining < 0 {
		return 0, newErr(KindInvalidFormat, "remainingBeforeIncludedFiles", "included files larger than remaining stream")
	}
	return remaining, nil
}

func readIncludedFiles(port Port, count int) ([]IncludedFile, error) {
	out := make([]IncludedFile, 0, count)
	for i := 0; i < count; i++ {
		nameLenBuf, err := readExact(port, 4)
		if err != nil {
			return nil, wrapErr(KindEOF, "readIncludedFiles", "read name length", err)
		}
		nameLen := binary.LittleEndian.Uint32(nameLenBuf)
		nameBuf, err := readExact(port, int(nameLen))
		if err != nil {
			return nil, wrapErr(KindEOF, "readIncludedFiles", "read name", err)
		}
		sizeBuf, err := readExact(port, 4)
		if err != nil {
			return nil, wrapErr(KindEOF, "readIncludedFiles", "read size", err)
		}
		size := binary.LittleEndian.Uint32(sizeBuf)
		data, err := readExact(port, int(size))
		if err != nil {
			return nil, wrapErr(KindEOF, "readIncludedFiles", "read data", err)
		}
		out = append(out, IncludedFile{Name: string(nameBuf), Data: data})
	}
	return out, nil
}
