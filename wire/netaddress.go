// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"net"
	"time"
)

// NetAddress defines a peer on the network: its address, the services it
// advertises, and the last time it was seen, matching the wire encoding
// used in version and addr messages.
type NetAddress struct {
	Timestamp time.Time
	Services  ServiceFlag
	IP        net.IP
	Port      uint16
}

// NewNetAddressIPPort returns a NetAddress for the given IP and port with
// the current time and the given services.
func NewNetAddressIPPort(ip net.IP, port uint16, services ServiceFlag) *NetAddress {
	return &NetAddress{
		Timestamp: time.Unix(time.Now().Unix(), 0),
		Services:  services,
		IP:        ip,
		Port:      port,
	}
}

// HasService returns whether the address advertises the given service.
func (na *NetAddress) HasService(service ServiceFlag) bool {
	return na.Services&service == service
}

// AddService flags the address as advertising the given service.
func (na *NetAddress) AddService(service ServiceFlag) {
	na.Services |= service
}

// Key returns a string uniquely identifying the endpoint, used by the
// host store to dedupe on IP:port.
func (na *NetAddress) Key() string {
	return net.JoinHostPort(na.IP.String(), fmtUint16(na.Port))
}

func fmtUint16(v uint16) string {
	// Avoids pulling in strconv just for this; kept local since it's only
	// used for the address key.
	const digits = "0123456789"
	if v == 0 {
		return "0"
	}
	var buf [5]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v%10]
		v /= 10
	}
	return string(buf[i:])
}

// WriteNetAddress serializes na to w with its timestamp, the form used in
// addr messages and in the on-disk host store.
func WriteNetAddress(w io.Writer, na *NetAddress) error {
	return writeNetAddress(w, na, true)
}

// ReadNetAddress reads a timestamped NetAddress from r, the inverse of
// WriteNetAddress.
func ReadNetAddress(r io.Reader) (*NetAddress, error) {
	na := &NetAddress{}
	if err := readNetAddress(r, na, true); err != nil {
		return nil, err
	}
	return na, nil
}

// readNetAddress reads a NetAddress from r. ts controls whether a 4-byte
// timestamp prefix is present, since the version message's address field
// omits it.
func readNetAddress(r io.Reader, na *NetAddress, ts bool) error {
	if ts {
		var stamp uint32
		if err := readElement(r, &stamp); err != nil {
			return err
		}
		na.Timestamp = time.Unix(int64(stamp), 0)
	}

	var services ServiceFlag
	var ip [16]byte
	if err := readElements(r, &services, &ip); err != nil {
		return err
	}
	na.Services = services
	na.IP = net.IP(ip[:])

	port, err := readUint16BigEndian(r)
	if err != nil {
		return err
	}
	na.Port = port
	return nil
}

// writeNetAddress serializes na to w, matching readNetAddress's framing.
func writeNetAddress(w io.Writer, na *NetAddress, ts bool) error {
	if ts {
		if err := writeElement(w, uint32(na.Timestamp.Unix())); err != nil {
			return err
		}
	}

	var ip [16]byte
	if na.IP != nil {
		copy(ip[:], na.IP.To16())
	}
	if err := writeElements(w, na.Services, ip); err != nil {
		return err
	}

	return writeUint16BigEndian(w, na.Port)
}

// readUint16BigEndian and writeUint16BigEndian encode the port field, which
// the protocol represents in network (big-endian) byte order unlike every
// other integer field.
func readUint16BigEndian(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return bigEndian.Uint16(buf[:]), nil
}

func writeUint16BigEndian(w io.Writer, v uint16) error {
	var buf [2]byte
	bigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}
