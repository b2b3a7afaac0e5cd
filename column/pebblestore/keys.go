package pebblestore

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/cespare/xxhash"
)

const (
	catalogPrefix = 'N'
	dataPrefix    = 'D'
)

// Super column names are written with an order-preserving escape so that
// keys of one super column never prefix keys of another:
// 0x00 becomes 0x00 0xFF and the name ends with 0x00 0x01.
const (
	escByte  = 0x00
	escFF    = 0xFF
	escTerm  = 0x01
	hashSize = 8
)

var errBadKey = errors.New("malformed data key")

func catalogKey(name string) []byte {
	return append([]byte{catalogPrefix}, name...)
}

// rowPrefix is D | xxhash(namespace) | len(namespace) namespace | len(row) row.
// The hash keeps a namespace's rows clustered; the full name keeps them exact.
func rowPrefix(namespace, row string) []byte {
	out := make([]byte, 0, 1+hashSize+8+len(namespace)+len(row))
	out = append(out, dataPrefix)
	out = binary.BigEndian.AppendUint64(out, xxhash.Sum64([]byte(namespace)))
	out = appendSized(out, namespace)
	out = appendSized(out, row)
	return out
}

func appendSized(dst []byte, s string) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(s)))
	return append(dst, s...)
}

func appendEscaped(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		if s[i] == escByte {
			dst = append(dst, escByte, escFF)
			continue
		}
		dst = append(dst, s[i])
	}
	return append(dst, escByte, escTerm)
}

// splitEscaped decodes an escaped super column name from the head of b and
// returns it with the remaining bytes.
func splitEscaped(b []byte) (string, []byte, error) {
	var name bytes.Buffer
	for i := 0; i < len(b); i++ {
		if b[i] != escByte {
			name.WriteByte(b[i])
			continue
		}
		if i+1 >= len(b) {
			return "", nil, errBadKey
		}
		switch b[i+1] {
		case escFF:
			name.WriteByte(escByte)
			i++
		case escTerm:
			return name.String(), b[i+2:], nil
		default:
			return "", nil, errBadKey
		}
	}
	return "", nil, errBadKey
}

func columnKey(prefix []byte, name string) []byte {
	out := make([]byte, 0, len(prefix)+len(name))
	out = append(out, prefix...)
	return append(out, name...)
}

func superPrefix(prefix []byte, super string) []byte {
	out := make([]byte, 0, len(prefix)+len(super)+2)
	out = append(out, prefix...)
	return appendEscaped(out, super)
}

// upperBound returns the smallest key greater than every key with the given
// prefix, or nil when there is none.
func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
