// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"ffaa/internal/transport"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Band Count        | uint16         | 2            | Number of floats (N)    |
| Bands             | []float32      | N * 4        | Band values             |
+-----------------------------------------------------------------------------+

Visual Layout:

|<---- 4 Bytes ---->|<------ 8 Bytes ------>|<-- 2 Bytes -->|<----- N * 4 Bytes ----->|
+-------------------+-----------------------+---------------+-------------------------+
|  Sequence Number  |       Timestamp       |  Band Count   |          Bands          |
|      (uint32)     |        (int64)        |    (uint16)   |      (N * float32)      |
+-------------------+-----------------------+---------------+-------------------------+
*/

// HeaderSize is the number of bytes before the band values.
const HeaderSize = 4 + 8 + 2

// MaxBands is the largest band count a packet can carry.
const MaxBands = math.MaxUint16

// Packet is a decoded UDP frame.
type Packet struct {
	Sequence  uint32
	Timestamp time.Time
	Bands     []float32
}

// AppendPacket encodes one packet onto dst and returns the extended slice.
func AppendPacket(dst []byte, seq uint32, f transport.Frame) ([]byte, error) {
	if len(f.Bands) > MaxBands {
		return dst, fmt.Errorf("frame has %d bands, packet limit is %d", len(f.Bands), MaxBands)
	}
	dst = binary.BigEndian.AppendUint32(dst, seq)
	dst = binary.BigEndian.AppendUint64(dst, uint64(f.Timestamp.UnixNano()))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(f.Bands)))
	for _, v := range f.Bands {
		dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst, nil
}

// ParsePacket decodes a packet produced by AppendPacket.
func ParsePacket(data []byte) (Packet, error) {
	if len(data) < HeaderSize {
		return Packet{}, fmt.Errorf("packet too short: %d bytes", len(data))
	}
	count := int(binary.BigEndian.Uint16(data[12:14]))
	if want := HeaderSize + 4*count; len(data) != want {
		return Packet{}, fmt.Errorf("packet length %d does not match band count %d (want %d bytes)", len(data), count, want)
	}

	p := Packet{
		Sequence:  binary.BigEndian.Uint32(data[0:4]),
		Timestamp: time.Unix(0, int64(binary.BigEndian.Uint64(data[4:12]))),
		Bands:     make([]float32, count),
	}
	for i := range p.Bands {
		off := HeaderSize + 4*i
		p.Bands[i] = math.Float32frombits(binary.BigEndian.Uint32(data[off : off+4]))
	}
	return p, nil
}
