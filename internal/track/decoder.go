// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

// Package track decodes the obfuscated binary track snapshots returned by
// the historical-track endpoint.
//
// A snapshot is a concatenation of fixed-size big-endian records:
//
//	offset  size  field
//	0       4     timestamp, uint32 Unix seconds (UTC)
//	4       4     longitude, int32 after XOR, degrees * 600000
//	8       4     latitude,  int32 after XOR, degrees * 600000
//	12      2     course,    uint16 after XOR, degrees * 10
//	14      2     speed,     uint16 after XOR, knots * 10
//
// Coordinate fields are XORed with 0x55555555, course and speed with 0x5555.
// A trailing partial record is ignored.
package track

import (
	"encoding/binary"
	"math"
	"time"
)

// RecordSize is the length in bytes of one encoded track point.
const RecordSize = 16

const (
	coordMask      uint32 = 0x55555555
	motionMask     uint16 = 0x5555
	coordDivisor          = 600000.0
	motionDivisor         = 10.0
)

// Point is one decoded track record.
type Point struct {
	Timestamp time.Time
	Latitude  float64
	Longitude float64
	Course    float64
	Speed     float64
}

// Decode converts a snapshot buffer into points in buffer order.
// Buffers shorter than RecordSize yield an empty, non-nil slice.
func Decode(buf []byte) []Point {
	n := len(buf) / RecordSize
	points := make([]Point, 0, n)

	for i := 0; i < n; i++ {
		rec := buf[i*RecordSize : (i+1)*RecordSize]

		ts := binary.BigEndian.Uint32(rec[0:4])
		lon := int32(binary.BigEndian.Uint32(rec[4:8]) ^ coordMask) //nolint:gosec // reinterpretation is the encoding
		lat := int32(binary.BigEndian.Uint32(rec[8:12]) ^ coordMask) //nolint:gosec // reinterpretation is the encoding
		cog := binary.BigEndian.Uint16(rec[12:14]) ^ motionMask
		sog := binary.BigEndian.Uint16(rec[14:16]) ^ motionMask

		points = append(points, Point{
			Timestamp: time.Unix(int64(ts), 0).UTC(),
			Latitude:  float64(lat) / coordDivisor,
			Longitude: float64(lon) / coordDivisor,
			Course:    float64(cog) / motionDivisor,
			Speed:     float64(sog) / motionDivisor,
		})
	}

	return points
}

// Encode is the inverse of Decode. Values are rounded to the wire
// resolution (1/600000 degree, 0.1 knot or degree).
func Encode(points []Point) []byte {
	buf := make([]byte, len(points)*RecordSize)

	for i, p := range points {
		rec := buf[i*RecordSize : (i+1)*RecordSize]

		lon := int32(math.Round(p.Longitude * coordDivisor))
		lat := int32(math.Round(p.Latitude * coordDivisor))
		cog := uint16(math.Round(p.Course * motionDivisor))
		sog := uint16(math.Round(p.Speed * motionDivisor))

		binary.BigEndian.PutUint32(rec[0:4], uint32(p.Timestamp.Unix())) //nolint:gosec // wire field is uint32
		binary.BigEndian.PutUint32(rec[4:8], uint32(lon)^coordMask)      //nolint:gosec // reinterpretation is the encoding
		binary.BigEndian.PutUint32(rec[8:12], uint32(lat)^coordMask)     //nolint:gosec // reinterpretation is the encoding
		binary.BigEndian.PutUint16(rec[12:14], cog^motionMask)
		binary.BigEndian.PutUint16(rec[14:16], sog^motionMask)
	}

	return buf
}
