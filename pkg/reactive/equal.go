package reactive

import (
	"fmt"
	"math"
	"reflect"
	"unsafe"
)

// HasChanged reports whether next differs from prev by identity.
// NaN equals NaN while +0 and -0 differ. Maps, slices and pointers compare
// by address. Functions compare by closure identity: the same func value
// is unchanged, while two evaluations of a capturing literal differ.
func HasChanged(next, prev any) bool {
	return !sameValue(next, prev)
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := a.(float64); ok {
		fb, ok := b.(float64)
		return ok && sameFloat(fa, fb)
	}
	if fa, ok := a.(float32); ok {
		fb, ok := b.(float32)
		return ok && sameFloat(float64(fa), float64(fb))
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func:
		return funcData(a) == funcData(b)
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if !va.Comparable() {
		return false
	}
	return a == b
}

// eface mirrors the runtime layout of an empty interface.
type eface struct {
	typ, data unsafe.Pointer
}

// funcData returns the closure pointer held by an interface wrapping a
// func. Value.Pointer only yields the code address, which closures share.
func funcData(v any) unsafe.Pointer {
	return (*eface)(unsafe.Pointer(&v)).data
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b && math.Signbit(a) == math.Signbit(b)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
