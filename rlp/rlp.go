// Package rlp implements the Recursive Length Prefix encoding used for
// account, log, and transaction payloads throughout core/state and
// core/types. It covers the subset of the Yellow Paper (Appendix B) that
// those callers need: byte strings, lists, unsigned integers, and structs
// built from them.
package rlp

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
)

// bytesLike is satisfied by any type that already knows how to render
// itself as a canonical byte slice (core/types.Address, core/types.Hash).
type bytesLike interface {
	Bytes() []byte
}

// EncodeToBytes returns the RLP encoding of v.
//
// Supported inputs: []byte, uint64 and smaller unsigned integers, *big.Int,
// types implementing Bytes() []byte, slices of any supported element type
// (encoded as an RLP list), and structs (encoded as an RLP list of their
// exported fields, in declaration order). Pointers are dereferenced; a nil
// pointer other than *big.Int encodes as an empty string.
func EncodeToBytes(val interface{}) ([]byte, error) {
	if val == nil {
		return encodeBytes(nil), nil
	}
	if bi, ok := val.(*big.Int); ok {
		return encodeBigInt(bi), nil
	}
	if bl, ok := val.(bytesLike); ok {
		return encodeBytes(bl.Bytes()), nil
	}
	return encodeValue(reflect.ValueOf(val))
}

func encodeValue(v reflect.Value) ([]byte, error) {
	if !v.IsValid() {
		return encodeBytes(nil), nil
	}
	if v.CanInterface() {
		if bi, ok := v.Interface().(*big.Int); ok {
			return encodeBigInt(bi), nil
		}
		if bl, ok := v.Interface().(bytesLike); ok {
			return encodeBytes(bl.Bytes()), nil
		}
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return encodeBytes(nil), nil
		}
		return encodeValue(v.Elem())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeUint64(v.Uint()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		if n < 0 {
			return nil, fmt.Errorf("rlp: cannot encode negative integer %d", n)
		}
		return encodeUint64(uint64(n)), nil
	case reflect.String:
		return encodeBytes([]byte(v.String())), nil
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return encodeBytes(toByteSlice(v)), nil
		}
		var payload []byte
		for i := 0; i < v.Len(); i++ {
			enc, err := encodeValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			payload = append(payload, enc...)
		}
		return WrapList(payload), nil
	case reflect.Ptr:
		if v.IsNil() {
			return encodeBytes(nil), nil
		}
		return encodeValue(v.Elem())
	case reflect.Struct:
		var payload []byte
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.PkgPath != "" {
				continue // unexported
			}
			enc, err := encodeValue(v.Field(i))
			if err != nil {
				return nil, err
			}
			payload = append(payload, enc...)
		}
		return WrapList(payload), nil
	default:
		return nil, fmt.Errorf("rlp: unsupported type %s", v.Type())
	}
}

func toByteSlice(v reflect.Value) []byte {
	if v.Kind() == reflect.Slice {
		return v.Bytes()
	}
	out := make([]byte, v.Len())
	for i := range out {
		out[i] = byte(v.Index(i).Uint())
	}
	return out
}

func encodeUint64(n uint64) []byte {
	if n == 0 {
		return encodeBytes(nil)
	}
	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	i := 0
	for i < 8 && buf[i] == 0 {
		i++
	}
	return encodeBytes(buf[i:])
}

func encodeBigInt(bi *big.Int) []byte {
	if bi == nil || bi.Sign() == 0 {
		return encodeBytes(nil)
	}
	return encodeBytes(bi.Bytes())
}

// encodeBytes renders b as an RLP byte string.
func encodeBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return []byte{b[0]}
	}
	return append(lengthPrefix(0x80, 0xb7, len(b)), b...)
}

// WrapList renders an already RLP-encoded payload (the concatenation of a
// list's encoded elements) as an RLP list.
func WrapList(payload []byte) []byte {
	return append(lengthPrefix(0xc0, 0xf7, len(payload)), payload...)
}

// lengthPrefix builds the header bytes for either a string or a list,
// given the short-form base (0x80 or 0xc0) and the long-form base one less
// than the first long-form tag (0xb7 or 0xf7).
func lengthPrefix(shortBase, longBase byte, n int) []byte {
	if n < 56 {
		return []byte{shortBase + byte(n)}
	}
	lenBytes := big.NewInt(int64(n)).Bytes()
	out := make([]byte, 0, 1+len(lenBytes))
	out = append(out, longBase+byte(len(lenBytes)))
	return append(out, lenBytes...)
}

var errNotEnoughData = errors.New("rlp: input too short")
