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

import "time"

// sRGBPrimaries holds the sRGB primaries and white point, adapted from
// D65 to the D50 profile connection space white point via the Bradford
// transform, as published alongside the IEC 61966-2-1 matrix.
var sRGBPrimaries = struct {
	red, green, blue [3]float64
}{
	red:   [3]float64{0.4361, 0.2225, 0.0139},
	green: [3]float64{0.3851, 0.7169, 0.0971},
	blue:  [3]float64{0.1431, 0.0606, 0.7141},
}

// sRGBCurve is the piecewise sRGB transfer function, as an ICC
// parametricCurveType function 3: y = (a*x+b)^g for x>=d, else y = c*x.
var sRGBCurve = &Curve{
	FuncType: 3,
	Params:   []float64{2.4, 1 / 1.055, 0.055 / 1.055, 1 / 12.92, 0.04045},
}

// BuildSRGBProfile constructs an in-memory matrix/TRC RGB display profile
// with sRGB primaries and transfer curve, encoded at the given ICC
// version. It is used by this package's own tests in place of a shipped
// binary sRGB profile asset, and is a convenient starting point for
// callers who want a known-good RGB profile without reading one from
// disk.
func BuildSRGBProfile(version Version) *Profile {
	p := &Profile{
		Version:         version,
		Class:           DisplayDeviceProfile,
		ColorSpace:      RGBSpace,
		PCS:             PCSXYZSpace,
		CreationDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		RenderingIntent: Perceptual,
		TagData:         make(map[TagType][]byte),
	}

	p.TagData[RedMatrixColumn] = encodeXYZTag(sRGBPrimaries.red)
	p.TagData[GreenMatrixColumn] = encodeXYZTag(sRGBPrimaries.green)
	p.TagData[BlueMatrixColumn] = encodeXYZTag(sRGBPrimaries.blue)
	p.TagData[MediaWhitePoint] = encodeXYZTag(d50WhitePoint)

	curveData := sRGBCurve.Encode()
	p.TagData[RedTRC] = curveData
	p.TagData[GreenTRC] = curveData
	p.TagData[BlueTRC] = curveData

	return p
}

// encodeXYZTag encodes an XYZType tag (a single XYZ triple, as used by the
// rXYZ/gXYZ/bXYZ/wtpt tags) as s15Fixed16Number values.
func encodeXYZTag(xyz [3]float64) []byte {
	buf := make([]byte, 20)
	copy(buf[0:4], "XYZ ")
	putS15Fixed16(buf, 8, xyz[0])
	putS15Fixed16(buf, 12, xyz[1])
	putS15Fixed16(buf, 16, xyz[2])
	return buf
}

