package testutil

// Wasm value types.
const (
	I32 byte = 0x7f
	I64 byte = 0x7e
)

// Opcodes used by test function bodies.
const (
	OpDrop     byte = 0x1a
	OpCall     byte = 0x10
	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
	OpEnd      byte = 0x0b
	OpGlobal   byte = 0x23
	OpTrap     byte = 0x00
)

// Import and export kinds.
const (
	KindFunc   byte = 0x00
	KindTable  byte = 0x01
	KindMemory byte = 0x02
	KindGlobal byte = 0x03
)

const funcRef byte = 0x70

type funcType struct {
	params, results []byte
}

type wasmImport struct {
	module, name string
	kind         byte
	desc         []byte
}

type wasmFunc struct {
	typeIdx uint32
	body    []byte
}

type wasmGlobal struct {
	valType byte
	mutable bool
	init    []byte
}

type wasmExport struct {
	name string
	kind byte
	idx  uint32
}

// WasmModule assembles a minimal WebAssembly binary for tests, so guest units
// can be produced without an external toolchain. Imports must be declared
// before functions, tables and globals.
type WasmModule struct {
	types   []funcType
	imports []wasmImport
	funcs   []wasmFunc
	tables  []uint32
	globals []wasmGlobal
	exports []wasmExport
	memory  bool
	start   *uint32

	importedFuncs, importedTables, importedGlobals uint32
}

// NewWasmModule returns an empty module builder.
func NewWasmModule() *WasmModule {
	return &WasmModule{}
}

func (m *WasmModule) typeIndex(params, results []byte) uint32 {
	for i, t := range m.types {
		if string(t.params) == string(params) && string(t.results) == string(results) {
			return uint32(i) //nolint:gosec // test modules are tiny
		}
	}
	m.types = append(m.types, funcType{params: params, results: results})
	return uint32(len(m.types) - 1) //nolint:gosec // test modules are tiny
}

func (m *WasmModule) addImport(module, name string, kind byte, desc []byte) {
	if len(m.funcs) > 0 || len(m.tables) > 0 || len(m.globals) > 0 {
		panic("testutil: imports must be declared before definitions")
	}
	m.imports = append(m.imports, wasmImport{module: module, name: name, kind: kind, desc: desc})
}

// ImportFunc declares an imported function and returns its function index.
func (m *WasmModule) ImportFunc(module, name string, params, results []byte) uint32 {
	m.addImport(module, name, KindFunc, appendU32(nil, m.typeIndex(params, results)))
	m.importedFuncs++
	return m.importedFuncs - 1
}

// ImportGlobal declares an imported global and returns its global index.
func (m *WasmModule) ImportGlobal(module, name string, valType byte, mutable bool) uint32 {
	m.addImport(module, name, KindGlobal, []byte{valType, mutability(mutable)})
	m.importedGlobals++
	return m.importedGlobals - 1
}

// ImportTable declares an imported funcref table with at least minSize
// elements and returns its table index.
func (m *WasmModule) ImportTable(module, name string, minSize uint32) uint32 {
	m.addImport(module, name, KindTable, appendU32([]byte{funcRef, 0x00}, minSize))
	m.importedTables++
	return m.importedTables - 1
}

// Func defines a function with the given body (without the trailing end
// opcode) and returns its function index.
func (m *WasmModule) Func(params, results []byte, body ...byte) uint32 {
	m.funcs = append(m.funcs, wasmFunc{typeIdx: m.typeIndex(params, results), body: body})
	return m.importedFuncs + uint32(len(m.funcs)) - 1 //nolint:gosec // test modules are tiny
}

// Global defines an i32 global initialized to v and returns its global index.
func (m *WasmModule) Global(v int32, mutable bool) uint32 {
	m.globals = append(m.globals, wasmGlobal{valType: I32, mutable: mutable, init: I32Const(v)})
	return m.importedGlobals + uint32(len(m.globals)) - 1 //nolint:gosec // test modules are tiny
}

// Table defines a funcref table of minSize elements and returns its table
// index.
func (m *WasmModule) Table(minSize uint32) uint32 {
	m.tables = append(m.tables, minSize)
	return m.importedTables + uint32(len(m.tables)) - 1 //nolint:gosec // test modules are tiny
}

// Export exports the function at idx under name.
func (m *WasmModule) Export(name string, idx uint32) *WasmModule {
	return m.ExportKind(name, KindFunc, idx)
}

// ExportKind exports the item of the given kind at idx under name.
func (m *WasmModule) ExportKind(name string, kind byte, idx uint32) *WasmModule {
	m.exports = append(m.exports, wasmExport{name: name, kind: kind, idx: idx})
	return m
}

// Start marks the function at idx as the module's start function, which the
// runtime calls during instantiation.
func (m *WasmModule) Start(idx uint32) *WasmModule {
	m.start = &idx
	return m
}

// WithMemory adds one page of memory exported as "memory" and an "allocate"
// export that always returns offset 1024.
func (m *WasmModule) WithMemory() *WasmModule {
	m.memory = true
	alloc := m.Func([]byte{I32}, []byte{I32}, I32Const(1024)...)
	m.ExportKind("memory", KindMemory, 0)
	return m.Export("allocate", alloc)
}

// Bytes encodes the module.
func (m *WasmModule) Bytes() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	if len(m.types) > 0 {
		var sec []byte
		sec = appendU32(sec, uint32(len(m.types))) //nolint:gosec // test modules are tiny
		for _, t := range m.types {
			sec = append(sec, 0x60)
			sec = appendVec(sec, t.params)
			sec = appendVec(sec, t.results)
		}
		out = appendSection(out, 1, sec)
	}

	if len(m.imports) > 0 {
		var sec []byte
		sec = appendU32(sec, uint32(len(m.imports))) //nolint:gosec // test modules are tiny
		for _, imp := range m.imports {
			sec = appendName(sec, imp.module)
			sec = appendName(sec, imp.name)
			sec = append(sec, imp.kind)
			sec = append(sec, imp.desc...)
		}
		out = appendSection(out, 2, sec)
	}

	if len(m.funcs) > 0 {
		var sec []byte
		sec = appendU32(sec, uint32(len(m.funcs))) //nolint:gosec // test modules are tiny
		for _, f := range m.funcs {
			sec = appendU32(sec, f.typeIdx)
		}
		out = appendSection(out, 3, sec)
	}

	if len(m.tables) > 0 {
		var sec []byte
		sec = appendU32(sec, uint32(len(m.tables))) //nolint:gosec // test modules are tiny
		for _, size := range m.tables {
			sec = appendU32(append(sec, funcRef, 0x00), size)
		}
		out = appendSection(out, 4, sec)
	}

	if m.memory {
		out = appendSection(out, 5, []byte{0x01, 0x00, 0x01})
	}

	if len(m.globals) > 0 {
		var sec []byte
		sec = appendU32(sec, uint32(len(m.globals))) //nolint:gosec // test modules are tiny
		for _, g := range m.globals {
			sec = append(sec, g.valType, mutability(g.mutable))
			sec = append(sec, g.init...)
			sec = append(sec, OpEnd)
		}
		out = appendSection(out, 6, sec)
	}

	if len(m.exports) > 0 {
		var sec []byte
		sec = appendU32(sec, uint32(len(m.exports))) //nolint:gosec // test modules are tiny
		for _, e := range m.exports {
			sec = appendName(sec, e.name)
			sec = append(sec, e.kind)
			sec = appendU32(sec, e.idx)
		}
		out = appendSection(out, 7, sec)
	}

	if m.start != nil {
		out = appendSection(out, 8, appendU32(nil, *m.start))
	}

	if len(m.funcs) > 0 {
		var sec []byte
		sec = appendU32(sec, uint32(len(m.funcs))) //nolint:gosec // test modules are tiny
		for _, f := range m.funcs {
			body := append([]byte{0x00}, f.body...) // no locals
			body = append(body, OpEnd)
			sec = appendU32(sec, uint32(len(body))) //nolint:gosec // test modules are tiny
			sec = append(sec, body...)
		}
		out = appendSection(out, 10, sec)
	}

	return out
}

func mutability(mutable bool) byte {
	if mutable {
		return 0x01
	}
	return 0x00
}

// Call encodes a call instruction.
func Call(idx uint32) []byte {
	return appendU32([]byte{OpCall}, idx)
}

// I32Const encodes an i32.const instruction.
func I32Const(v int32) []byte {
	return appendS64([]byte{OpI32Const}, int64(v))
}

// I64Const encodes an i64.const instruction.
func I64Const(v int64) []byte {
	return appendS64([]byte{OpI64Const}, v)
}

// Concat joins instruction sequences.
func Concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// GuestCalling builds a guest unit that imports a no-argument, no-result
// function "call" from each named module and exports "run", which calls them
// in order.
func GuestCalling(modules ...string) []byte {
	m := NewWasmModule()
	var body []byte
	for _, mod := range modules {
		idx := m.ImportFunc(mod, "call", nil, nil)
		body = append(body, Call(idx)...)
	}
	run := m.Func(nil, nil, body...)
	return m.Export("run", run).Bytes()
}

// HostCaller builds a guest unit with memory and an allocator that imports
// module.function using the packed (i64)->i64 host call convention and exports
// it as "invoke", passing an empty request.
func HostCaller(module, function string) []byte {
	m := NewWasmModule()
	imp := m.ImportFunc(module, function, []byte{I64}, []byte{I64})
	invoke := m.Func(nil, []byte{I64}, Concat(I64Const(0), Call(imp))...)
	m.Export("invoke", invoke)
	return m.WithMemory().Bytes()
}

// Noop builds a guest unit with no imports exporting "run" and "call",
// which do nothing.
func Noop() []byte {
	m := NewWasmModule()
	fn := m.Func(nil, nil)
	return m.Export("run", fn).Export("call", fn).Bytes()
}

// GlobalGet encodes a global.get instruction.
func GlobalGet(idx uint32) []byte {
	return appendU32([]byte{OpGlobal}, idx)
}

// GuestImportingGlobal builds a guest unit that imports the immutable i32
// global "value" from module and exports "get", which returns it.
func GuestImportingGlobal(module string) []byte {
	m := NewWasmModule()
	g := m.ImportGlobal(module, "value", I32, false)
	get := m.Func(nil, []byte{I32}, GlobalGet(g)...)
	return m.Export("get", get).Bytes()
}

// GlobalExporter builds a guest unit exporting an immutable i32 global
// "value" holding v.
func GlobalExporter(v int32) []byte {
	m := NewWasmModule()
	return m.ExportKind("value", KindGlobal, m.Global(v, false)).Bytes()
}

// GuestImportingTable builds a guest unit that imports the funcref table
// "table" from module and exports "run", which does nothing.
func GuestImportingTable(module string) []byte {
	m := NewWasmModule()
	m.ImportTable(module, "table", 1)
	return m.Export("run", m.Func(nil, nil)).Bytes()
}

// TableExporter builds a guest unit exporting a one-element funcref table
// "table".
func TableExporter() []byte {
	m := NewWasmModule()
	return m.ExportKind("table", KindTable, m.Table(1)).Bytes()
}

// Initializing builds a guest unit whose "_initialize" export calls the
// no-argument function "call" imported from module. It also exports "call"
// and "run", which do nothing.
func Initializing(module string) []byte {
	m := NewWasmModule()
	imp := m.ImportFunc(module, "call", nil, nil)
	init := m.Func(nil, nil, Call(imp)...)
	noop := m.Func(nil, nil)
	return m.Export("_initialize", init).Export("call", noop).Export("run", noop).Bytes()
}

func appendSection(out []byte, id byte, content []byte) []byte {
	out = append(out, id)
	out = appendU32(out, uint32(len(content))) //nolint:gosec // test modules are tiny
	return append(out, content...)
}

func appendVec(out, items []byte) []byte {
	out = appendU32(out, uint32(len(items))) //nolint:gosec // test modules are tiny
	return append(out, items...)
}

func appendName(out []byte, s string) []byte {
	out = appendU32(out, uint32(len(s))) //nolint:gosec // test modules are tiny
	return append(out, s...)
}

func appendU32(out []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func appendS64(out []byte, v int64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
