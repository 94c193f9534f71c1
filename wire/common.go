// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

var (
	littleEndian = binary.LittleEndian
	bigEndian    = binary.BigEndian
)

// readElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element.
func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *int32:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		*e = int32(littleEndian.Uint32(buf[:]))
		return nil

	case *uint32:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		*e = littleEndian.Uint32(buf[:])
		return nil

	case *int64:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		*e = int64(littleEndian.Uint64(buf[:]))
		return nil

	case *uint64:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		*e = littleEndian.Uint64(buf[:])
		return nil

	case *bool:
		var buf [1]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		*e = buf[0] != 0x00
		return nil

	case *BitcoinNet:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		*e = BitcoinNet(littleEndian.Uint32(buf[:]))
		return nil

	case *ServiceFlag:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		*e = ServiceFlag(littleEndian.Uint64(buf[:]))
		return nil

	case *[4]byte:
		_, err := io.ReadFull(r, e[:])
		return err

	case *[12]byte:
		_, err := io.ReadFull(r, e[:])
		return err

	case *[16]byte:
		_, err := io.ReadFull(r, e[:])
		return err
	}

	return binary.Read(r, littleEndian, element)
}

// readElements reads multiple items from r using readElement.
func readElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		if err := readElement(r, element); err != nil {
			return err
		}
	}
	return nil
}

// writeElement writes the little endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case int32:
		var buf [4]byte
		littleEndian.PutUint32(buf[:], uint32(e))
		_, err := w.Write(buf[:])
		return err

	case uint32:
		var buf [4]byte
		littleEndian.PutUint32(buf[:], e)
		_, err := w.Write(buf[:])
		return err

	case int64:
		var buf [8]byte
		littleEndian.PutUint64(buf[:], uint64(e))
		_, err := w.Write(buf[:])
		return err

	case uint64:
		var buf [8]byte
		littleEndian.PutUint64(buf[:], e)
		_, err := w.Write(buf[:])
		return err

	case bool:
		var buf [1]byte
		if e {
			buf[0] = 0x01
		}
		_, err := w.Write(buf[:])
		return err

	case BitcoinNet:
		var buf [4]byte
		littleEndian.PutUint32(buf[:], uint32(e))
		_, err := w.Write(buf[:])
		return err

	case ServiceFlag:
		var buf [8]byte
		littleEndian.PutUint64(buf[:], uint64(e))
		_, err := w.Write(buf[:])
		return err

	case [4]byte:
		_, err := w.Write(e[:])
		return err

	case [12]byte:
		_, err := w.Write(e[:])
		return err

	case [16]byte:
		_, err := w.Write(e[:])
		return err
	}

	return binary.Write(w, littleEndian, element)
}

// writeElements writes multiple items to w using writeElement.
func writeElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		if err := writeElement(w, element); err != nil {
			return err
		}
	}
	return nil
}

// ReadVarInt reads a variable length integer from r and returns it as a
// uint64, using the same prefix-byte convention as the reference client.
func ReadVarInt(r io.Reader) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, err
	}

	var rv uint64
	switch prefix[0] {
	case 0xff:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		rv = littleEndian.Uint64(buf[:])

	case 0xfe:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		rv = uint64(littleEndian.Uint32(buf[:]))

	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		rv = uint64(littleEndian.Uint16(buf[:]))

	default:
		rv = uint64(prefix[0])
	}

	return rv, nil
}

// WriteVarInt writes val to w using the fewest bytes possible for its
// magnitude, per the reference client's compact size encoding.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		_, err := w.Write([]byte{byte(val)})
		return err
	}

	if val <= 0xffff {
		buf := make([]byte, 3)
		buf[0] = 0xfd
		littleEndian.PutUint16(buf[1:], uint16(val))
		_, err := w.Write(buf)
		return err
	}

	if val <= 0xffffffff {
		buf := make([]byte, 5)
		buf[0] = 0xfe
		littleEndian.PutUint32(buf[1:], uint32(val))
		_, err := w.Write(buf)
		return err
	}

	buf := make([]byte, 9)
	buf[0] = 0xff
	littleEndian.PutUint64(buf[1:], val)
	_, err := w.Write(buf)
	return err
}

// VarIntSerializeSize returns the number of bytes it would take to encode
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	switch {
	case val < 0xfd:
		return 1
	case val <= 0xffff:
		return 3
	case val <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// ReadVarBytes reads a variable length byte array. maxAllowed guards against
// a malicious or malformed length prefix triggering a huge allocation.
func ReadVarBytes(r io.Reader, maxAllowed uint32, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > uint64(maxAllowed) {
		return nil, fmt.Errorf("%s length %d exceeds max allowed %d",
			fieldName, count, maxAllowed)
	}

	buf := make([]byte, count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteVarBytes writes a variable length byte array to w.
func WriteVarBytes(w io.Writer, buf []byte) error {
	if err := WriteVarInt(w, uint64(len(buf))); err != nil {
		return err
	}
	_, err := w.Write(buf)
	return err
}

// ReadVarString reads a variable length string from r, encoded the same
// way as a variable length byte array.
func ReadVarString(r io.Reader, maxAllowed uint32) (string, error) {
	buf, err := ReadVarBytes(r, maxAllowed, "variable string")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteVarString writes a variable length string to w.
func WriteVarString(w io.Writer, s string) error {
	return WriteVarBytes(w, []byte(s))
}
