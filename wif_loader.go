// wif_loader.go - Weaving Information File (.wif) reader
//
// WIF is a plain-text, INI-like format: bracketed section headers,
// "name = value" keys and "N = value" numbered key-lines, backslash line
// continuations, semicolon comments. Ported from the original driver's
// wif.cpp, which this loader follows section-by-section.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const wsCutset = " \t\n\r\f\v"

type wifParser struct {
	lines      []string
	pos        int
	nameKeys   map[string]string
	numberKeys []string
}

func newWifParser(data []byte) *wifParser {
	return &wifParser{lines: strings.Split(string(data), "\n")}
}

// seekSection rewinds to the top of the file and scans for "[name]",
// case-insensitively, leaving pos just after the matching line.
func (p *wifParser) seekSection(name string) bool {
	nameLen := len(name)
	for i, raw := range p.lines {
		line := strings.TrimSuffix(raw, "\r")
		if len(line) == nameLen+2 && line[0] == '[' && line[len(line)-1] == ']' &&
			strings.EqualFold(line[1:1+nameLen], name) {
			p.pos = i + 1
			return true
		}
	}
	return false
}

// nextLogicalLine joins backslash-continued lines into one logical line.
func (p *wifParser) nextLogicalLine() (line string, atEOF bool) {
	if p.pos >= len(p.lines) {
		return "", true
	}
	var sb strings.Builder
	for {
		raw := strings.TrimSuffix(p.lines[p.pos], "\r")
		p.pos++
		if strings.HasSuffix(raw, "\\") {
			sb.WriteString(strings.TrimSuffix(raw, "\\"))
			if p.pos < len(p.lines) {
				continue
			}
		} else {
			sb.WriteString(raw)
		}
		break
	}
	return sb.String(), false
}

// readSection seeks "name" and parses its body into p.nameKeys/p.numberKeys.
// numberKeys is sized numlines+1 (1-based, slot 0 unused) and pre-filled
// with defValue so missing key-lines read back as defValue.
func (p *wifParser) readSection(name string, numlines int, defValue string) (bool, error) {
	if !p.seekSection(name) {
		return false, nil
	}
	p.nameKeys = map[string]string{}
	p.numberKeys = make([]string, numlines+1)
	for i := range p.numberKeys {
		p.numberKeys[i] = defValue
	}

	for {
		line, atEOF := p.nextLogicalLine()
		if atEOF {
			break
		}
		if strings.HasPrefix(line, "[") {
			break
		}
		trimmed := strings.Trim(line, wsCutset)
		if trimmed == "" {
			break
		}
		if trimmed[0] == ';' {
			continue
		}

		eq := strings.IndexByte(trimmed, '=')
		if eq <= 0 || eq == len(trimmed)-1 {
			return false, fmt.Errorf("error in wif file: %s", trimmed)
		}
		value := strings.TrimLeft(trimmed[eq+1:], wsCutset)
		if value != "" && value[0] == ';' {
			value = ""
		}

		digits := 0
		for digits < len(trimmed) && trimmed[digits] >= '0' && trimmed[digits] <= '9' {
			digits++
		}

		if digits > 0 && strings.Trim(trimmed[digits:eq], wsCutset) == "" {
			i, err := strconv.Atoi(trimmed[:digits])
			if err != nil || i < 1 {
				return false, fmt.Errorf("error in wif file: %s", trimmed)
			}
			if i < len(p.numberKeys) {
				p.numberKeys[i] = value
			} else {
				fmt.Fprintf(os.Stderr, "Extra keyline in section %s\n", name)
			}
			continue
		}

		key := strings.ToLower(strings.TrimRight(trimmed[:eq], wsCutset))
		if key == "" {
			return false, fmt.Errorf("error in wif file: %s", trimmed)
		}
		if _, exists := p.nameKeys[key]; exists {
			fmt.Fprintf(os.Stderr, "Duplicate key in wif section, ignoring: %s\n", trimmed)
		} else {
			p.nameKeys[key] = value
		}
	}
	return true, nil
}

func stripAllWhite(v string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(" \t\n\r\f\v", r) {
			return -1
		}
		return r
	}, v)
}

func wifValueToBool(v string) (bool, error) {
	switch {
	case v == "":
		return false, fmt.Errorf("bad boolean value in wif file")
	case hasCIPrefix(v, "true"), hasCIPrefix(v, "on"), strings.HasPrefix(v, "1"), hasCIPrefix(v, "yes"):
		return true, nil
	case hasCIPrefix(v, "false"), hasCIPrefix(v, "off"), strings.HasPrefix(v, "0"), hasCIPrefix(v, "no"):
		return false, nil
	default:
		return false, fmt.Errorf("bad boolean value in wif file")
	}
}

func hasCIPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func wifValueToInt(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func wifValueToIntPair(v string, def [2]int) [2]int {
	parts := strings.SplitN(v, ",", 2)
	if len(parts) != 2 {
		return def
	}
	a, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return def
	}
	return [2]int{a, b}
}

func wifValueToInt3(v string) (r, g, b int, ok bool) {
	parts := strings.SplitN(v, ",", 3)
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	ri, e1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	gi, e2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	bi, e3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if e1 != nil || e2 != nil || e3 != nil {
		return 0, 0, 0, false
	}
	return ri, gi, bi, true
}

// processKeyLines converts numbered key-lines into shaft bitmasks.
// multi permits comma-separated shaft lists (tieup/liftplan columns);
// single-shaft sections (threading) reject them.
func (p *wifParser) processKeyLines(multi bool, maxShafts int) ([]uint64, error) {
	extraShafts := false
	keyLines := make([]uint64, len(p.numberKeys))
	for i := 1; i < len(p.numberKeys); i++ {
		shafts := stripAllWhite(p.numberKeys[i])
		if shafts == "" {
			continue
		}
		parts := strings.Split(shafts, ",")
		if !multi && len(parts) > 1 {
			return nil, fmt.Errorf("drawboy doesn't handle ends with multiple shafts")
		}
		for _, part := range parts {
			shaft, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("error in wif file: bad shaft number in liftplan")
			}
			if shaft >= 1 && shaft <= maxShafts {
				keyLines[i] |= 1 << uint(shaft-1)
			} else {
				extraShafts = true
			}
		}
	}
	if extraShafts {
		fmt.Fprintln(os.Stderr, "Ignoring extra shafts.")
	}
	return keyLines, nil
}

func (p *wifParser) processColorLines(palette []Color, def int) []Color {
	colors := make([]Color, len(p.numberKeys)+1)
	for i := range colors {
		colors[i] = safePaletteEntry(palette, def)
	}
	for i := 1; i < len(p.numberKeys); i++ {
		colors[i] = safePaletteEntry(palette, wifValueToInt(p.numberKeys[i], def))
	}
	return colors
}

func safePaletteEntry(palette []Color, idx int) Color {
	if idx < 0 || idx >= len(palette) {
		return Color{}
	}
	return palette[idx]
}

// LoadWIF parses a WIF draft from r, following the original driver's wif.cpp
// section order: WIF, CONTENTS, WEAVING, WARP, WEFT, COLOR PALETTE/TABLE,
// WARP COLORS/WEFT COLORS, THREADING, then either LIFTPLAN or TIEUP+TREADLING.
func LoadWIF(r io.Reader) (*Draft, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := newWifParser(data)

	if !p.seekSection("WIF") {
		return nil, fmt.Errorf("error in wif file: no WIF section")
	}
	if ok, err := p.readSection("CONTENTS", 0, ""); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("error in wif file: no CONTENTS section")
	}

	hasTieUp, hasTreadling, hasLiftplan := false, false, false
	if v, ok := p.nameKeys["tieup"]; ok {
		if hasTieUp, err = wifValueToBool(v); err != nil {
			return nil, err
		}
	}
	if v, ok := p.nameKeys["treadling"]; ok {
		if hasTreadling, err = wifValueToBool(v); err != nil {
			return nil, err
		}
	}
	if v, ok := p.nameKeys["liftplan"]; ok {
		if hasLiftplan, err = wifValueToBool(v); err != nil {
			return nil, err
		}
	}
	if !hasTreadling && !hasLiftplan {
		return nil, fmt.Errorf("error in wif file: no treadling or liftplan")
	}
	if !hasLiftplan && hasTreadling && !hasTieUp {
		return nil, fmt.Errorf("error in wif file: has treadling but no tie-up")
	}
	if hasTreadling && hasLiftplan {
		fmt.Fprintln(os.Stderr, "Issue in wif file: has treadling and liftplan, using liftplan.")
	}

	if ok, err := p.readSection("WEAVING", 0, ""); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("error in wif file: no WEAVING section")
	}

	d := &Draft{RisingShed: true}
	if v, ok := p.nameKeys["rising shed"]; ok {
		if d.RisingShed, err = wifValueToBool(v); err != nil {
			return nil, err
		}
	} else {
		fmt.Fprintln(os.Stderr, "Wif file does not specify rising/falling shed. Assuming rising shed.")
	}

	shaftsVal, hasShafts := p.nameKeys["shafts"]
	if !hasShafts {
		return nil, fmt.Errorf("error in wif file: Shafts key missing")
	}
	d.MaxShafts = wifValueToInt(shaftsVal, 0)
	if d.MaxShafts < 1 || d.MaxShafts > 40 {
		return nil, fmt.Errorf("error in wif file, Shafts key illegal value: %s", shaftsVal)
	}

	treadlesVal, hasTreadles := p.nameKeys["treadles"]
	if !hasTreadles {
		return nil, fmt.Errorf("error in wif file: Treadles key missing")
	}
	d.MaxTreadles = wifValueToInt(treadlesVal, 0)
	if d.MaxTreadles < 1 || d.MaxTreadles > 64 {
		return nil, fmt.Errorf("error in wif file, Treadles key illegal value: %s", treadlesVal)
	}

	if ok, err := p.readSection("WARP", 0, ""); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("error in wif file: no WARP section")
	}
	endsVal, hasEnds := p.nameKeys["threads"]
	if !hasEnds {
		return nil, fmt.Errorf("error in wif file: Threads key missing from WARP section")
	}
	ends := wifValueToInt(endsVal, 0)
	if ends <= 0 {
		return nil, fmt.Errorf("error in wif file: Threads key illegal value in WARP section %s", endsVal)
	}
	defWarpColor := 1
	if v, ok := p.nameKeys["color"]; ok {
		defWarpColor = wifValueToInt(v, 1)
	} else {
		fmt.Fprintln(os.Stderr, "Wif file does not specify default warp color, using 1.")
	}

	if ok, err := p.readSection("WEFT", 0, ""); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("error in wif file: no WEFT section")
	}
	picksVal, hasPicks := p.nameKeys["threads"]
	if !hasPicks {
		return nil, fmt.Errorf("error in wif file: Threads key missing from WEFT section")
	}
	picks := wifValueToInt(picksVal, 0)
	if picks <= 0 {
		return nil, fmt.Errorf("error in wif file, Threads key illegal value in WEFT section %s", picksVal)
	}
	defWeftColor := 2
	if v, ok := p.nameKeys["color"]; ok {
		defWeftColor = wifValueToInt(v, 1)
	} else {
		fmt.Fprintln(os.Stderr, "Wif file does not specify default weft color, using 2.")
	}

	palette := []Color{{}} // color 0 is unused
	if ok, err := p.readSection("COLOR PALETTE", 0, ""); err != nil {
		return nil, err
	} else if !ok {
		fmt.Fprintln(os.Stderr, "Wif file does not specify color palette. Using default.")
		white, _ := NewColorRange(255, 255, 255, 0, 255)
		blue, _ := NewColorRange(0, 0, 255, 0, 255)
		palette = append(palette, white, blue)
	} else {
		entriesVal, hasEntries := p.nameKeys["entries"]
		if !hasEntries {
			return nil, fmt.Errorf("error in wif file: Entries key missing from COLOR PALETTE section")
		}
		colors := wifValueToInt(entriesVal, 2)
		rangeVal, hasRange := p.nameKeys["range"]
		if !hasRange {
			return nil, fmt.Errorf("error in wif file: Range key missing from COLOR PALETTE section")
		}
		rng := wifValueToIntPair(rangeVal, [2]int{0, 255})

		palette = append(palette, make([]Color, colors)...)

		if ok, err := p.readSection("COLOR TABLE", colors, "illegal"); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf("error in wif file: no COLOR TABLE section")
		}
		for i := 1; i <= colors; i++ {
			r, g, b, ok := wifValueToInt3(p.numberKeys[i])
			if !ok {
				return nil, fmt.Errorf("error in wif file: bad color table entry")
			}
			c, err := NewColorRange(r, g, b, rng[0], rng[1])
			if err != nil {
				return nil, err
			}
			palette[i] = c
		}
	}

	if ok, _ := p.readSection("WARP COLORS", ends, ""); ok {
		d.WarpColor = p.processColorLines(palette, defWarpColor)
	} else {
		d.WarpColor = make([]Color, ends+1)
		for i := range d.WarpColor {
			d.WarpColor[i] = safePaletteEntry(palette, defWarpColor)
		}
	}

	if ok, _ := p.readSection("WEFT COLORS", picks, ""); ok {
		d.WeftColor = p.processColorLines(palette, defWeftColor)
	} else {
		d.WeftColor = make([]Color, picks+1)
		for i := range d.WeftColor {
			d.WeftColor[i] = safePaletteEntry(palette, defWeftColor)
		}
	}

	if ok, err := p.readSection("THREADING", ends, ""); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("error in wif file: THREADING section missing")
	}
	if len(p.nameKeys) != 0 {
		fmt.Fprintln(os.Stderr, "Issue in wif file: spurious named keys in THREADING.")
	}
	if d.Threading, err = p.processKeyLines(false, d.MaxShafts); err != nil {
		return nil, err
	}

	if hasLiftplan {
		if ok, err := p.readSection("LIFTPLAN", picks, ""); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf("error in wif file: LIFTPLAN section missing")
		}
		if len(p.nameKeys) != 0 {
			fmt.Fprintln(os.Stderr, "Issue in wif file: spurious named keys in LIFTPLAN.")
		}
		allEmpty := true
		for _, v := range p.numberKeys {
			if v != "" {
				allEmpty = false
				break
			}
		}
		if allEmpty {
			return nil, fmt.Errorf("error in wif file: LIFTPLAN has no key lines")
		}
		if d.Liftplan, err = p.processKeyLines(true, d.MaxShafts); err != nil {
			return nil, err
		}
	} else {
		if ok, err := p.readSection("TIEUP", d.MaxTreadles, ""); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf("error in wif file: TIEUP section missing")
		}
		if len(p.nameKeys) != 0 {
			fmt.Fprintln(os.Stderr, "Issue in wif file: spurious named keys in TIEUP.")
		}
		if d.Tieup, err = p.processKeyLines(true, d.MaxShafts); err != nil {
			return nil, err
		}

		if ok, err := p.readSection("TREADLING", picks, ""); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf("error in wif file: TREADLING section missing")
		}
		if len(p.nameKeys) != 0 {
			fmt.Fprintln(os.Stderr, "Issue in wif file: spurious named keys in TREADLING.")
		}

		d.Liftplan = make([]uint64, picks+1)
		extraTreadle := false
		for i := 1; i <= picks; i++ {
			treadling := stripAllWhite(p.numberKeys[i])
			if treadling == "" {
				continue
			}
			for _, part := range strings.Split(treadling, ",") {
				treadle, err := strconv.Atoi(part)
				if err != nil {
					return nil, fmt.Errorf("error in wif file, bad treadle number in liftplan: %s", treadling)
				}
				if treadle >= 1 && treadle <= d.MaxTreadles {
					d.Liftplan[i] |= d.Tieup[treadle]
				} else {
					extraTreadle = true
				}
			}
		}
		if extraTreadle {
			fmt.Fprintln(os.Stderr, "Ignoring extra treadles.")
		}
	}

	return d, nil
}
