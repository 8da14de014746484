package wazero

import (
	"bytes"
	"fmt"
)

var wasmHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

const importSectionID = 0x02

// Import descriptor kinds.
const (
	importFunc   = 0x00
	importTable  = 0x01
	importMemory = 0x02
	importGlobal = 0x03
	importTag    = 0x04
)

// importedModules returns the distinct module names payload imports from, in
// first-seen order. Every import kind counts: functions, tables, memories,
// globals and tags.
func importedModules(payload []byte) ([]string, error) {
	if !bytes.HasPrefix(payload, wasmHeader) {
		return nil, fmt.Errorf("not a wasm binary")
	}
	r := &binaryReader{buf: payload, pos: len(wasmHeader)}

	for !r.done() {
		id, err := r.readByte()
		if err != nil {
			return nil, err
		}
		size, err := r.u32()
		if err != nil {
			return nil, err
		}
		section, err := r.readBytes(int(size))
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", id, err)
		}
		if id == importSectionID {
			return readImportSection(&binaryReader{buf: section})
		}
	}
	return nil, nil
}

func readImportSection(r *binaryReader) ([]string, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var names []string
	for i := uint32(0); i < count; i++ {
		module, err := r.name()
		if err != nil {
			return nil, fmt.Errorf("import %d: %w", i, err)
		}
		if _, err := r.name(); err != nil {
			return nil, fmt.Errorf("import %d: %w", i, err)
		}
		if err := r.skipImportDesc(); err != nil {
			return nil, fmt.Errorf("import %d from %q: %w", i, module, err)
		}
		if _, ok := seen[module]; ok {
			continue
		}
		seen[module] = struct{}{}
		names = append(names, module)
	}
	return names, nil
}

type binaryReader struct {
	buf []byte
	pos int
}

func (r *binaryReader) done() bool {
	return r.pos >= len(r.buf)
}

func (r *binaryReader) readByte() (byte, error) {
	if r.done() {
		return 0, fmt.Errorf("unexpected end of input at offset %d", r.pos)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *binaryReader) readBytes(n int) ([]byte, error) {
	if n < 0 || n > len(r.buf)-r.pos {
		return nil, fmt.Errorf("length %d exceeds input at offset %d", n, r.pos)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// uleb reads an unsigned LEB128 value of at most maxBytes bytes.
func (r *binaryReader) uleb(maxBytes int) (uint64, error) {
	var v uint64
	for i := 0; i < maxBytes; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("integer too long at offset %d", r.pos)
}

func (r *binaryReader) u32() (uint32, error) {
	v, err := r.uleb(5)
	if err != nil {
		return 0, err
	}
	if v > 0xffffffff {
		return 0, fmt.Errorf("integer overflows u32 at offset %d", r.pos)
	}
	return uint32(v), nil
}

func (r *binaryReader) name() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	b, err := r.readBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *binaryReader) skipImportDesc() error {
	kind, err := r.readByte()
	if err != nil {
		return err
	}
	switch kind {
	case importFunc:
		_, err = r.u32()
	case importTable:
		if _, err = r.readByte(); err != nil { // reftype
			return err
		}
		err = r.skipLimits()
	case importMemory:
		err = r.skipLimits()
	case importGlobal:
		_, err = r.readBytes(2) // valtype, mutability
	case importTag:
		if _, err = r.readByte(); err != nil { // attribute
			return err
		}
		_, err = r.u32()
	default:
		err = fmt.Errorf("unknown import kind 0x%02x", kind)
	}
	return err
}

// skipLimits skips a limits descriptor. Bit 0 of the flags marks a maximum;
// 64-bit memories encode bounds as u64.
func (r *binaryReader) skipLimits() error {
	flags, err := r.readByte()
	if err != nil {
		return err
	}
	width := 5
	if flags&0x04 != 0 {
		width = 10
	}
	if _, err := r.uleb(width); err != nil {
		return err
	}
	if flags&0x01 != 0 {
		_, err = r.uleb(width)
	}
	return err
}
