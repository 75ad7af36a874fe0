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

// NamedColor is one entry of a [NamedColorTable]: a label together with
// its PCS and device coordinates.
type NamedColor struct {
	Name   string
	PCS    []float64 // 3 values, in the table's PCS encoding
	Device []float64 // DeviceChannels values
}

// NamedColorTable decodes an ncl2 (namedColor2Type) tag: a list of named
// colours together with their PCS and device-space coordinates.
type NamedColorTable struct {
	DeviceChannels int
	Prefix         string
	Suffix         string
	Colors         []NamedColor

	byName map[string]int
}

// DecodeNamedColorTable decodes an ncl2 tag.
func DecodeNamedColorTable(data []byte) (*NamedColorTable, error) {
	if len(data) < 84 || string(data[0:4]) != "ncl2" {
		return nil, errUnexpectedType
	}
	count := int(getUint32(data, 12))
	deviceChannels := int(getUint32(data, 16))

	prefix := trimZero(data[20:52])
	suffix := trimZero(data[52:84])

	recSize := 38 + 2*deviceChannels // 32-byte name, 3 PCS, n device
	off := 84
	colors := make([]NamedColor, count)
	for i := 0; i < count; i++ {
		if len(data) < off+recSize {
			return nil, errInvalidTagData
		}
		name := trimZero(data[off : off+32])
		pcs := make([]float64, 3)
		for j := 0; j < 3; j++ {
			pcs[j] = IcUSFtoD(getUint16(data, off+32+j*2))
		}
		device := make([]float64, deviceChannels)
		for j := 0; j < deviceChannels; j++ {
			device[j] = IcUSFtoD(getUint16(data, off+38+j*2))
		}
		colors[i] = NamedColor{Name: name, PCS: pcs, Device: device}
		off += recSize
	}

	t := &NamedColorTable{
		DeviceChannels: deviceChannels,
		Prefix:         prefix,
		Suffix:         suffix,
		Colors:         colors,
	}
	t.buildIndex()
	return t, nil
}

func trimZero(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

func (t *NamedColorTable) buildIndex() {
	t.byName = make(map[string]int, len(t.Colors))
	for i, c := range t.Colors {
		t.byName[c.Name] = i
	}
}

// ByName looks up a named colour's device coordinates by its label
// (without Prefix/Suffix). It returns [ColorNotFound] if the name is not
// present in the table, matching the icCmmStatColorNotFound path of a
// Name-to-Pixel lookup in the ICC reference implementation.
func (t *NamedColorTable) ByName(name string) ([]float64, error) {
	if t.byName == nil {
		t.buildIndex()
	}
	idx, ok := t.byName[name]
	if !ok {
		return nil, xErr(ColorNotFound, "NamedColorTable.ByName", nil)
	}
	return t.Colors[idx].Device, nil
}

// NearestByDevice returns the named colour whose device coordinates are
// closest (Euclidean) to device.
func (t *NamedColorTable) NearestByDevice(device []float64) *NamedColor {
	return t.nearest(device, func(c *NamedColor) []float64 { return c.Device })
}

// NearestByPCS returns the named colour whose PCS coordinates are closest
// (Euclidean) to pcs.
func (t *NamedColorTable) NearestByPCS(pcs []float64) *NamedColor {
	return t.nearest(pcs, func(c *NamedColor) []float64 { return c.PCS })
}

func (t *NamedColorTable) nearest(target []float64, coordsOf func(*NamedColor) []float64) *NamedColor {
	var best *NamedColor
	bestDist := math.Inf(1)
	for i := range t.Colors {
		c := &t.Colors[i]
		coords := coordsOf(c)
		if len(coords) != len(target) {
			continue
		}
		var d float64
		for j := range coords {
			diff := coords[j] - target[j]
			d += diff * diff
		}
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}
