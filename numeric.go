// seehuhn.de/go/cmm - compose and apply ICC colour transforms
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package cmm

import "math"

// IcFtoD converts a raw s15Fixed16Number (as found in matrix and XYZ tags)
// to a float64, dividing by 65536 as the ICC specification requires.
func IcFtoD(n int32) float64 {
	return float64(n) / 65536
}

// IcDtoSF converts a float64 to a raw s15Fixed16Number, rounding to the
// nearest integer with ties resolved to even, matching the ICC reference
// implementation's fixed-point conversion.
func IcDtoSF(d float64) int32 {
	return int32(math.RoundToEven(d * 65536))
}

// IcDtoUSF converts a float64 to a raw u1Fixed15Number, the encoding used
// by XYZ tag values: 1.0 is represented as 32768.
func IcDtoUSF(d float64) uint16 {
	v := math.RoundToEven(d * 32768)
	if v < 0 {
		v = 0
	}
	if v > 65535 {
		v = 65535
	}
	return uint16(v)
}

// IcUSFtoD is the inverse of [IcDtoUSF].
func IcUSFtoD(n uint16) float64 {
	return float64(n) / 32768
}

// IcFtoU8 converts a normalised [0,1] value to an 8-bit encoding,
// clamping out-of-range input before rounding.
func IcFtoU8(x float64) uint8 {
	return uint8(math.RoundToEven(clamp(x, 0, 1) * 255))
}

// IcFtoU16 converts a normalised [0,1] value to a 16-bit encoding,
// clamping out-of-range input before rounding.
func IcFtoU16(x float64) uint16 {
	return uint16(math.RoundToEven(clamp(x, 0, 1) * 65535))
}
