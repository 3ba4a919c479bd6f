package module

import (
	"fmt"
	"math"
	"sync"

	"github.com/fimoengine/fimo-std/ferr"
)

// ParamType is the primitive integer type of a parameter cell.
type ParamType uint8

const (
	ParamI8 ParamType = iota
	ParamI16
	ParamI32
	ParamI64
	ParamU8
	ParamU16
	ParamU32
	ParamU64
)

func (t ParamType) String() string {
	switch t {
	case ParamI8:
		return "i8"
	case ParamI16:
		return "i16"
	case ParamI32:
		return "i32"
	case ParamI64:
		return "i64"
	case ParamU8:
		return "u8"
	case ParamU16:
		return "u16"
	case ParamU32:
		return "u32"
	case ParamU64:
		return "u64"
	default:
		return "unknown"
	}
}

func (t ParamType) unsigned() bool { return t >= ParamU8 }

// signedRange returns the inclusive [min,max] for a signed ParamType.
func (t ParamType) signedRange() (int64, int64) {
	switch t {
	case ParamI8:
		return math.MinInt8, math.MaxInt8
	case ParamI16:
		return math.MinInt16, math.MaxInt16
	case ParamI32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

// unsignedMax returns the inclusive upper bound for an unsigned ParamType.
func (t ParamType) unsignedMax() uint64 {
	switch t {
	case ParamU8:
		return math.MaxUint8
	case ParamU16:
		return math.MaxUint16
	case ParamU32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

// ParamAccess is a read or write visibility level for a parameter.
type ParamAccess uint8

const (
	AccessPrivate ParamAccess = iota
	AccessDependency
	AccessPublic
)

func (a ParamAccess) String() string {
	switch a {
	case AccessPrivate:
		return "private"
	case AccessDependency:
		return "dependency"
	case AccessPublic:
		return "public"
	default:
		return "unknown"
	}
}

// Parameter is a typed, visibility-controlled mutable cell owned by a
// module. The stored value is always kept as the two's-complement bit
// pattern of the declared width, read back signed or unsigned per Type.
type Parameter struct {
	mu          sync.RWMutex
	Type        ParamType
	ReadAccess  ParamAccess
	WriteAccess ParamAccess
	raw         uint64
}

// NewParameter constructs a Parameter with an initial value, bounds-checked
// against t.
func NewParameter(t ParamType, read, write ParamAccess, initial int64) (*Parameter, error) {
	p := &Parameter{Type: t, ReadAccess: read, WriteAccess: write}
	if err := p.setSignedLocked(initial); err != nil {
		return nil, err
	}

	return p, nil
}

// GetSigned returns the parameter's value as a signed integer, sign-extended
// per its declared width.
func (p *Parameter) GetSigned() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch p.Type {
	case ParamI8:
		return int64(int8(p.raw))
	case ParamI16:
		return int64(int16(p.raw))
	case ParamI32:
		return int64(int32(p.raw))
	case ParamI64:
		return int64(p.raw)
	default:
		return int64(p.raw)
	}
}

// GetUnsigned returns the parameter's value as an unsigned integer.
func (p *Parameter) GetUnsigned() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.raw
}

// SetSigned bounds-checks v against the parameter's declared width and
// stores it. Returns ferr.ErrOutOfRange if v overflows the declared type.
func (p *Parameter) SetSigned(v int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.setSignedLocked(v)
}

func (p *Parameter) setSignedLocked(v int64) error {
	if p.Type.unsigned() {
		if v < 0 || uint64(v) > p.Type.unsignedMax() {
			return fmt.Errorf("module: Parameter.SetSigned: %d out of range for %s: %w", v, p.Type, ferr.ErrOutOfRange)
		}
		p.raw = uint64(v)

		return nil
	}
	lo, hi := p.Type.signedRange()
	if v < lo || v > hi {
		return fmt.Errorf("module: Parameter.SetSigned: %d out of range for %s: %w", v, p.Type, ferr.ErrOutOfRange)
	}
	p.raw = uint64(v)

	return nil
}

// SetUnsigned bounds-checks v against the parameter's declared width and
// stores it. Returns ferr.ErrOutOfRange if v overflows the declared type.
func (p *Parameter) SetUnsigned(v uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.Type.unsigned() {
		_, hi := p.Type.signedRange()
		if v > uint64(hi) {
			return fmt.Errorf("module: Parameter.SetUnsigned: %d out of range for %s: %w", v, p.Type, ferr.ErrOutOfRange)
		}
		p.raw = v

		return nil
	}
	if v > p.Type.unsignedMax() {
		return fmt.Errorf("module: Parameter.SetUnsigned: %d out of range for %s: %w", v, p.Type, ferr.ErrOutOfRange)
	}
	p.raw = v

	return nil
}
