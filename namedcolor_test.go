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

import (
	"math"
	"testing"
)

// buildNcl2 hand-encodes an ncl2 (namedColor2Type) tag with the given
// device-channel count and colour entries, following the 84-byte header
// plus fixed-size-record layout DecodeNamedColorTable expects.
func buildNcl2(t *testing.T, deviceChannels int, colors []NamedColor) []byte {
	t.Helper()
	recSize := 38 + 2*deviceChannels
	buf := make([]byte, 84+recSize*len(colors))
	copy(buf[0:4], "ncl2")
	putUint32(buf, 12, uint32(len(colors)))
	putUint32(buf, 16, uint32(deviceChannels))
	copy(buf[20:52], "PRE")
	copy(buf[52:84], "SUF")

	off := 84
	for _, c := range colors {
		copy(buf[off:off+32], c.Name)
		for j := 0; j < 3; j++ {
			putUint16(buf, off+32+j*2, IcDtoUSF(c.PCS[j]))
		}
		for j := 0; j < deviceChannels; j++ {
			putUint16(buf, off+38+j*2, IcDtoUSF(c.Device[j]))
		}
		off += recSize
	}
	return buf
}

func TestDecodeNamedColorTableBasic(t *testing.T) {
	colors := []NamedColor{
		{Name: "Red", PCS: []float64{0.5, 0.4, 0.3}, Device: []float64{1, 0, 0}},
		{Name: "Green", PCS: []float64{0.6, 0.7, 0.2}, Device: []float64{0, 1, 0}},
	}
	data := buildNcl2(t, 3, colors)

	tbl, err := DecodeNamedColorTable(data)
	if err != nil {
		t.Fatalf("DecodeNamedColorTable: %v", err)
	}
	if tbl.DeviceChannels != 3 {
		t.Errorf("DeviceChannels = %d, want 3", tbl.DeviceChannels)
	}
	if tbl.Prefix != "PRE" || tbl.Suffix != "SUF" {
		t.Errorf("Prefix/Suffix = %q/%q, want PRE/SUF", tbl.Prefix, tbl.Suffix)
	}
	if len(tbl.Colors) != 2 {
		t.Fatalf("len(Colors) = %d, want 2", len(tbl.Colors))
	}
	for i, c := range colors {
		got := tbl.Colors[i]
		if got.Name != c.Name {
			t.Errorf("Colors[%d].Name = %q, want %q", i, got.Name, c.Name)
		}
		for j := range c.PCS {
			if math.Abs(got.PCS[j]-c.PCS[j]) > 1e-4 {
				t.Errorf("Colors[%d].PCS[%d] = %v, want %v", i, j, got.PCS[j], c.PCS[j])
			}
		}
		for j := range c.Device {
			if math.Abs(got.Device[j]-c.Device[j]) > 1e-4 {
				t.Errorf("Colors[%d].Device[%d] = %v, want %v", i, j, got.Device[j], c.Device[j])
			}
		}
	}
}

func TestDecodeNamedColorTableRejectsBadSignature(t *testing.T) {
	data := buildNcl2(t, 3, nil)
	copy(data[0:4], "XXXX")
	if _, err := DecodeNamedColorTable(data); err == nil {
		t.Errorf("DecodeNamedColorTable should reject a non-ncl2 signature")
	}
}

func TestDecodeNamedColorTableRejectsTruncatedData(t *testing.T) {
	colors := []NamedColor{{Name: "Red", PCS: []float64{0.5, 0.4, 0.3}, Device: []float64{1, 0, 0}}}
	data := buildNcl2(t, 3, colors)
	truncated := data[:len(data)-5]
	if _, err := DecodeNamedColorTable(truncated); err == nil {
		t.Errorf("DecodeNamedColorTable should reject truncated record data")
	}
}

func TestNamedColorTableByName(t *testing.T) {
	colors := []NamedColor{
		{Name: "Red", PCS: []float64{0.5, 0.4, 0.3}, Device: []float64{1, 0, 0}},
		{Name: "Blue", PCS: []float64{0.1, 0.1, 0.8}, Device: []float64{0, 0, 1}},
	}
	tbl, err := DecodeNamedColorTable(buildNcl2(t, 3, colors))
	if err != nil {
		t.Fatalf("DecodeNamedColorTable: %v", err)
	}

	dev, err := tbl.ByName("Blue")
	if err != nil {
		t.Fatalf("ByName(Blue): %v", err)
	}
	want := []float64{0, 0, 1}
	for i := range want {
		if math.Abs(dev[i]-want[i]) > 1e-4 {
			t.Errorf("ByName(Blue)[%d] = %v, want %v", i, dev[i], want[i])
		}
	}

	if _, err := tbl.ByName("Purple"); err == nil {
		t.Errorf("ByName(Purple) should fail with ColorNotFound")
	} else if cmmErr, ok := err.(*Error); !ok || cmmErr.Status != ColorNotFound {
		t.Errorf("ByName(Purple) error = %v, want ColorNotFound", err)
	}
}

func TestNamedColorTableNearestByDeviceAndPCS(t *testing.T) {
	colors := []NamedColor{
		{Name: "Red", PCS: []float64{0.9, 0.1, 0.1}, Device: []float64{1, 0, 0}},
		{Name: "Green", PCS: []float64{0.1, 0.9, 0.1}, Device: []float64{0, 1, 0}},
		{Name: "Blue", PCS: []float64{0.1, 0.1, 0.9}, Device: []float64{0, 0, 1}},
	}
	tbl, err := DecodeNamedColorTable(buildNcl2(t, 3, colors))
	if err != nil {
		t.Fatalf("DecodeNamedColorTable: %v", err)
	}

	nearDev := tbl.NearestByDevice([]float64{0.9, 0.05, 0.05})
	if nearDev == nil || nearDev.Name != "Red" {
		t.Errorf("NearestByDevice = %v, want Red", nearDev)
	}

	nearPCS := tbl.NearestByPCS([]float64{0.15, 0.85, 0.15})
	if nearPCS == nil || nearPCS.Name != "Green" {
		t.Errorf("NearestByPCS = %v, want Green", nearPCS)
	}
}
