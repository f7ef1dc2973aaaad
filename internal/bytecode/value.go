package bytecode

import "strconv"

// ValueType tags a Value's active field. Value is a flat tagged struct
// rather than a boxed interface, so the VM's hot loop never allocates on
// primitive arithmetic.
type ValueType byte

const (
	ValNil ValueType = iota
	ValBool
	ValNumber
	ValObj
)

// Value is the VM's runtime representation: one tag byte plus whichever
// payload field the tag selects. Strings (and any future heap object)
// live behind Obj so equality/GC bookkeeping has one place to live.
type Value struct {
	Type   ValueType
	Bool   bool
	Number float64
	Obj    *Obj
}

func Nil() Value             { return Value{Type: ValNil} }
func Bool(b bool) Value      { return Value{Type: ValBool, Bool: b} }
func Number(n float64) Value { return Value{Type: ValNumber, Number: n} }
func ObjVal(o *Obj) Value    { return Value{Type: ValObj, Obj: o} }

func (v Value) IsNil() bool    { return v.Type == ValNil }
func (v Value) IsFalsey() bool { return v.Type == ValNil || (v.Type == ValBool && !v.Bool) }

func (v Value) IsString() bool { return v.Type == ValObj && v.Obj.Kind == ObjString }

func (v Value) AsString() string {
	return v.Obj.Str
}

// Equal implements Lox's `==`: same-type comparison with no coercion;
// string Values compare by interned-pointer identity, which is valid
// exactly because every String Obj passes through the intern table.
func Equal(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case ValNil:
		return true
	case ValBool:
		return a.Bool == b.Bool
	case ValNumber:
		return a.Number == b.Number
	case ValObj:
		// Pointer identity is value equality for strings because every
		// String Obj passes through the intern table.
		return a.Obj == b.Obj
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Type {
	case ValNil:
		return "nil"
	case ValBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case ValObj:
		return v.Obj.String()
	default:
		return "<unknown>"
	}
}

// ObjKind distinguishes the heap-object variants. This VM has no call
// frames, so it only ever allocates Strings; NativeFn is kept for parity
// with the tree engine's object model and a possible `clock`/`type`
// wiring, but nothing in the compiler currently emits a reference to one.
type ObjKind byte

const (
	ObjString ObjKind = iota
	ObjNativeFn
)

// Obj is a heap-allocated value. Next chains every live Obj into the
// VM's intrusive allocation list for bulk free at shutdown; this engine
// does no garbage collection or reference counting.
type Obj struct {
	Kind ObjKind
	Next *Obj

	Str  string
	Hash uint32 // FNV-1a-32 of Str, computed once when the string is interned

	NativeName string
	NativeAr   int
	NativeFn   func(args []Value) (Value, error)
}

func (o *Obj) String() string {
	switch o.Kind {
	case ObjString:
		return o.Str
	case ObjNativeFn:
		return "<native fn " + o.NativeName + ">"
	default:
		return "<obj>"
	}
}
