// dtx_loader.go - Fiberworks DTX draft file reader
//
// DTX sections are delimited by "@@Name" marker lines rather than WIF's
// "[Name]" brackets, and most sections use a one-line-per-item layout
// instead of key=value pairs. Ported from the original driver's dtx.cpp.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type dtxParser struct {
	lines []string
}

func newDtxParser(data []byte) *dtxParser {
	return &dtxParser{lines: strings.Split(string(data), "\n")}
}

func dtxTrim(s string) string {
	return strings.TrimSpace(s)
}

// seekSection scans from the top of the file for a line that is exactly
// "@@name" and returns the index of the line after it.
func (p *dtxParser) seekSection(name string) (int, bool) {
	for i, raw := range p.lines {
		line := dtxTrim(raw)
		if len(line) == len(name)+2 && strings.HasPrefix(line, "@@") && strings.HasSuffix(line, name) {
			return i + 1, true
		}
	}
	return 0, false
}

// sectionLines returns the raw (untrimmed-of-content, but whitespace
// boundary trimmed) lines of a section body, stopping at the first blank
// line or the next "@@" marker.
func (p *dtxParser) sectionLines(name string) ([]string, bool) {
	start, ok := p.seekSection(name)
	if !ok {
		return nil, false
	}
	var body []string
	for i := start; i < len(p.lines); i++ {
		line := dtxTrim(p.lines[i])
		if line == "" || strings.HasPrefix(line, "@@") {
			break
		}
		body = append(body, line)
	}
	return body, true
}

func (p *dtxParser) readContentsToSet() map[string]bool {
	contents := map[string]bool{}
	lines, _ := p.sectionLines("Contents")
	for _, l := range lines {
		contents[l] = true
	}
	return contents
}

func (p *dtxParser) readInfoToMap() (map[string]int, error) {
	info := map[string]int{}
	lines, ok := p.sectionLines("Info")
	if !ok {
		return info, nil
	}
	for _, line := range lines {
		space := strings.IndexByte(line, ' ')
		if !strings.HasPrefix(line, "%%") || space < 0 {
			return nil, fmt.Errorf("error in dtx file: parse error in Info section")
		}
		name := line[2:space]
		n, _ := strconv.Atoi(strings.TrimSpace(line[space:]))
		info[name] = n
	}
	return info, nil
}

func readColorPalette(p *dtxParser) ([]Color, error) {
	lines, ok := p.sectionLines("Color Palet")
	if !ok {
		return nil, nil
	}
	palette := make([]Color, 0, len(lines))
	for _, line := range lines {
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("error in dtx file: parse error in color palette")
		}
		r, e1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		g, e2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		b, e3 := strconv.Atoi(strings.TrimSpace(parts[2]))
		if e1 != nil || e2 != nil || e3 != nil {
			return nil, fmt.Errorf("error in dtx file: parse error in color palette")
		}
		c, err := NewColorRange(r, g, b, 0, 255)
		if err != nil {
			return nil, err
		}
		palette = append(palette, c)
	}
	return palette, nil
}

func readColorSection(p *dtxParser, name string, palette []Color) ([]Color, error) {
	lines, ok := p.sectionLines(name)
	if !ok {
		return nil, nil
	}
	colors := []Color{{}} // 1-based array
	for _, line := range lines {
		for _, field := range strings.Fields(line) {
			for _, numStr := range strings.Split(field, ",") {
				if numStr == "" {
					continue
				}
				v, err := strconv.Atoi(numStr)
				if err != nil {
					return nil, fmt.Errorf("error in dtx file: parse error in warp/weft color section")
				}
				if v < 0 || v >= len(palette) {
					return nil, fmt.Errorf("dtx file contains color outside of the palette")
				}
				colors = append(colors, palette[v])
			}
		}
	}
	return colors, nil
}

func readSectionToVector(p *dtxParser, name string) ([]uint64, error) {
	lines, ok := p.sectionLines(name)
	if !ok {
		return nil, nil
	}
	ret := []uint64{0} // 1-based array
	for _, line := range lines {
		for _, field := range strings.Fields(line) {
			var v uint64
			for _, shaftStr := range strings.Split(field, ",") {
				if shaftStr == "0" || shaftStr == "" {
					continue
				}
				shaft, err := strconv.Atoi(shaftStr)
				if err != nil {
					return nil, fmt.Errorf("error in dtx file: bad shaft number in %s", name)
				}
				v |= 1 << uint(shaft-1)
			}
			ret = append(ret, v)
		}
	}
	return ret, nil
}

func readTieup(p *dtxParser) ([]uint64, bool, error) {
	lines, ok := p.sectionLines("Tieup")
	if !ok {
		return nil, true, nil
	}
	rising := true
	var rows []string
	for _, line := range lines {
		if line == "%%%%sinking" {
			rising = false
			continue
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		return nil, rising, fmt.Errorf("error in dtx file: empty Tieup section")
	}
	// rows are listed top shaft first; reverse so index 0 is shaft 1
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	treadles := len(rows[0])
	shafts := len(rows)
	tieup := make([]uint64, treadles+1)
	for treadle := 0; treadle < treadles; treadle++ {
		for shaft := 0; shaft < shafts; shaft++ {
			if treadle < len(rows[shaft]) && rows[shaft][treadle] == '1' {
				tieup[treadle+1] |= 1 << uint(shaft)
			}
		}
	}
	return tieup, rising, nil
}

func readLiftplan(p *dtxParser) ([]uint64, bool, error) {
	lines, ok := p.sectionLines("Liftplan")
	if !ok {
		return nil, true, nil
	}
	rising := true
	liftplan := []uint64{0} // 1-based array
	for _, line := range lines {
		if line == "%%%%sinking" {
			rising = false
			continue
		}
		var lift uint64
		for i, c := range line {
			if c == '1' {
				lift |= 1 << uint(i)
			}
		}
		liftplan = append(liftplan, lift)
	}
	return liftplan, rising, nil
}

// LoadDTX parses a Fiberworks DTX draft from r.
func LoadDTX(r io.Reader) (*Draft, error) {
	br := bufio.NewReader(r)
	data, err := io.ReadAll(br)
	if err != nil {
		return nil, err
	}
	p := newDtxParser(data)

	if _, ok := p.seekSection("StartDTX"); !ok {
		return nil, fmt.Errorf("error in dtx file: no StartDTX section")
	}

	contents := p.readContentsToSet()
	if len(contents) == 0 {
		return nil, fmt.Errorf("error in dtx file: no Contents section")
	}
	hasLiftplan := contents["Liftplan"]
	hasTreadling := contents["Treadling"] && contents["Tieup"]
	if !hasTreadling && !hasLiftplan {
		return nil, fmt.Errorf("error in dtx file: no treadling/tieup or liftplan")
	}
	if hasTreadling && hasLiftplan {
		fmt.Println("Issue in dtx file: has treadling and liftplan, using liftplan.")
	}
	hasColor := contents["Color Palet"] && contents["Warp Colors"] && contents["Weft Colors"]

	info, err := p.readInfoToMap()
	if err != nil {
		return nil, err
	}
	for _, key := range []string{"shafts", "treadles", "ends", "picks"} {
		if _, ok := info[key]; !ok {
			return nil, fmt.Errorf("dtx file missing information")
		}
	}

	d := &Draft{
		MaxShafts:   info["shafts"],
		MaxTreadles: info["treadles"],
		RisingShed:  true,
	}
	ends := info["ends"]
	picks := info["picks"]

	if !hasColor {
		// Fiberworks omits color info entirely if the user never touches the
		// color bars: default warp to white, weft to blue.
		white, _ := NewColorRange(255, 255, 255, 0, 255)
		blue, _ := NewColorRange(0, 0, 255, 0, 255)
		d.WarpColor = make([]Color, ends+1)
		for i := range d.WarpColor {
			d.WarpColor[i] = white
		}
		d.WeftColor = make([]Color, picks+1)
		for i := range d.WeftColor {
			d.WeftColor[i] = blue
		}
	} else {
		palette, err := readColorPalette(p)
		if err != nil {
			return nil, err
		}
		if len(palette) < 2 {
			return nil, fmt.Errorf("dtx file is missing a color palette")
		}
		if d.WarpColor, err = readColorSection(p, "Warp Colors", palette); err != nil {
			return nil, err
		}
		if d.WeftColor, err = readColorSection(p, "Weft Colors", palette); err != nil {
			return nil, err
		}
		if len(d.WarpColor) != ends+1 {
			return nil, fmt.Errorf("dtx file has wrong number of ends in the Warp Color section")
		}
		if len(d.WeftColor) != picks+1 {
			return nil, fmt.Errorf("dtx file has wrong number of picks in the Weft Color section")
		}
	}

	if d.Threading, err = readSectionToVector(p, "Threading"); err != nil {
		return nil, err
	}

	if hasLiftplan {
		if d.Liftplan, d.RisingShed, err = readLiftplan(p); err != nil {
			return nil, err
		}
		if len(d.Liftplan) != picks+1 {
			return nil, fmt.Errorf("dtx file has wrong number of picks in liftplan")
		}
	} else {
		if d.Tieup, d.RisingShed, err = readTieup(p); err != nil {
			return nil, err
		}
		if len(d.Tieup) != d.MaxTreadles+1 {
			return nil, fmt.Errorf("dtx file has wrong number of treadles in tieup")
		}
		treadling, err := readSectionToVector(p, "Treadling")
		if err != nil {
			return nil, err
		}
		if len(treadling) != picks+1 {
			return nil, fmt.Errorf("dtx file has wrong number of picks in treadling")
		}
		d.Liftplan = LiftplanFromTieup(d.Tieup, treadling)
	}

	return d, nil
}
