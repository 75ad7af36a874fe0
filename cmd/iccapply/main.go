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

// Command iccapply links two ICC profiles into a [cmm.Pipeline] and
// applies it to rows of floating-point pixel values read as CSV from
// stdin, writing the transformed rows as CSV to stdout.
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"seehuhn.de/go/cmm"
)

var (
	intentFlag = flag.String("intent", "relative",
		"rendering intent: perceptual, relative, saturation, absolute")
	mpeFlag   = flag.Bool("mpe", false, "prefer DToBn/BToDn multi-process elements over AToBn/BToAn")
	namedFlag = flag.Bool("named", false, "allow named-color tables when no LUT or matrix-TRC applies")
	cacheSize = flag.Int("cache", 0, "wrap the pipeline in an MRU cache of this size (0 disables)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] src.icc dst.icc\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "iccapply: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) != 2 {
		flag.Usage()
		os.Exit(2)
	}

	intent, err := parseIntent(*intentFlag)
	if err != nil {
		return err
	}

	src, err := loadProfile(args[0])
	if err != nil {
		return err
	}
	dst, err := loadProfile(args[1])
	if err != nil {
		return err
	}

	cfg := cmm.KernelConfig{UseMPE: *mpeFlag, UseNamedColor: *namedFlag}

	pl := cmm.NewPipeline(src.ColorSpace, dst.ColorSpace)
	if err := pl.AddXform(src, intent, cfg); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if err := pl.AddXform(dst, intent, cfg); err != nil {
		return fmt.Errorf("%s: %w", args[1], err)
	}
	if _, err := pl.Begin(false); err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	var apply func([]float64) ([]float64, error)
	if *cacheSize > 0 {
		c, err := cmm.NewCache(pl, *cacheSize)
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		ca := c.NewApply()
		apply = ca.Apply
	} else {
		ac := pl.NewApply()
		apply = ac.Apply
	}

	return applyCSV(os.Stdin, os.Stdout, apply)
}

func loadProfile(fname string) (*cmm.Profile, error) {
	body, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return cmm.Decode(body)
}

func parseIntent(s string) (cmm.RenderingIntent, error) {
	switch strings.ToLower(s) {
	case "perceptual":
		return cmm.Perceptual, nil
	case "relative", "relativecolorimetric":
		return cmm.RelativeColorimetric, nil
	case "saturation":
		return cmm.Saturation, nil
	case "absolute", "absolutecolorimetric":
		return cmm.AbsoluteColorimetric, nil
	default:
		return 0, fmt.Errorf("unknown rendering intent %q", s)
	}
}

// applyCSV reads comma-separated float64 rows from r, runs each row
// through apply, and writes the result rows to w as CSV.
func applyCSV(r io.Reader, w io.Writer, apply func([]float64) ([]float64, error)) error {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	bw := bufio.NewWriter(w)
	defer bw.Flush()
	cw := csv.NewWriter(bw)
	defer cw.Flush()

	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		in := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return fmt.Errorf("parsing field %d: %w", i, err)
			}
			in[i] = v
		}

		out, err := apply(in)
		if err != nil {
			return err
		}

		row := make([]string, len(out))
		for i, v := range out {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
		cw.Flush()
	}
}
