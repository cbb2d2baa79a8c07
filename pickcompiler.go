// pickcompiler.go - pick-list grammar compiler
//
// Compiles a pick-list expression (the --picks argument, or an interactive
// "treadle this range" command) into a flat sequence of pick numbers. Grammar
// ported from the original driver's ParsePicks/Options::parsePicks in
// args.cpp:
//
//	term      := multiplier? (tabbyrun | group | range)
//	multiplier := digits "x"
//	tabbyrun  := [ABab]+
//	group     := "(" picklist ")"
//	range     := "~"? number (("~"|"-") number)?
//	picklist  := term ("," term)*
//
// A leading "~" (or a "~" used as the range separator) marks the picks in
// that term as auto-tabby: an extra placeholder pick is inserted before or
// after them (depending on TabbyPattern) and resolved to an actual TabbyA or
// TabbyB pick number in a second pass.

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// TabbyPick values appear in a compiled pick list alongside ordinary
// (1-based) pick numbers.
const (
	TabbyA          = -1
	TabbyB          = -2
	autoTabbyMarker = -3
)

// TabbyPattern controls where an automatically-inserted tabby pick lands
// relative to the pattern pick it decorates, and which tabby shed (A or B)
// the first one resolves to.
type TabbyPattern int

const (
	TabbyXAYB TabbyPattern = iota // pattern pick, then tabby A, then next pattern pick, tabby B, ...
	TabbyAXBY                     // tabby A, then pattern pick, tabby B, pattern pick, ...
	TabbyXBYA
	TabbyBXAY
)

var tabbyPatternNames = map[string]TabbyPattern{
	"xayb": TabbyXAYB,
	"axby": TabbyAXBY,
	"xbya": TabbyXBYA,
	"bxay": TabbyBXAY,
}

// ParseTabbyPattern looks up a --tabbyPattern value, case-insensitively.
func ParseTabbyPattern(s string) (TabbyPattern, error) {
	if p, ok := tabbyPatternNames[strings.ToLower(s)]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("unknown tabby pattern %q", s)
}

func addPick(dst *[]int, pick int, isTabby, patternBeforeTabby bool) {
	if !isTabby {
		*dst = append(*dst, pick)
		return
	}
	if patternBeforeTabby {
		*dst = append(*dst, pick, autoTabbyMarker)
	} else {
		*dst = append(*dst, autoTabbyMarker, pick)
	}
}

// myStoi parses a run of decimal digits (with an optional sign) from the
// start of s, returning the value and how many bytes were consumed.
func myStoi(s string) (v int, consumed int, err error) {
	i := 0
	neg := false
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0, 0, fmt.Errorf("expected a number")
	}
	n, nerr := strconv.Atoi(s[start:i])
	if nerr != nil {
		return 0, 0, nerr
	}
	if neg {
		n = -n
	}
	return n, i, nil
}

// findMatch returns the index of the ')' matching the '(' at s[0], or 0 if
// the parentheses are unbalanced.
func findMatch(s string) int {
	level := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			level++
		case ')':
			level--
		}
		if level == 0 {
			return i
		}
		if level < 0 {
			return 0
		}
	}
	return 0
}

func isTabbyLetter(b byte) bool {
	return b == 'A' || b == 'a' || b == 'B' || b == 'b'
}

// compilePickTerms recursively parses a comma-separated, possibly nested
// pick-list expression into a flat slice of pick numbers and autoTabbyMarker
// placeholders.
func compilePickTerms(str string, maxPick int, patternBeforeTabby, threading bool) ([]int, error) {
	var newpicks []int

	for len(str) > 0 {
		mult := 1
		var pickRange []int

		multToken := strings.IndexByte(str, 'x')
		if multToken >= 0 && str[0] >= '0' && str[0] <= '9' {
			m, consumed, err := myStoi(str)
			if err == nil && consumed == multToken {
				if m < 1 {
					return nil, fmt.Errorf("syntax error in treadling multiplier")
				}
				mult = m
				str = str[multToken+1:]
				if str == "" || str[0] == ',' {
					return nil, fmt.Errorf("syntax error in treadling multiplier")
				}
			}
		}

		switch {
		case len(str) > 0 && isTabbyLetter(str[0]):
			if threading {
				return nil, fmt.Errorf("tabby entries make no sense in treadle-the-threading mode")
			}
			for len(str) > 0 && isTabbyLetter(str[0]) {
				switch str[0] {
				case 'a', 'A':
					addPick(&pickRange, TabbyA, false, false)
				case 'b', 'B':
					addPick(&pickRange, TabbyB, false, false)
				}
				str = str[1:]
			}

		case len(str) > 0 && str[0] == '(':
			match := findMatch(str)
			if match == 0 {
				return nil, fmt.Errorf("unbalanced parentheses in pick list")
			}
			sub, err := compilePickTerms(str[1:match], maxPick, patternBeforeTabby, threading)
			if err != nil {
				return nil, err
			}
			pickRange = sub
			str = str[match+1:]

		default:
			tabbyRange := len(str) > 0 && str[0] == '~'
			if tabbyRange {
				str = str[1:]
			}
			if tabbyRange && threading {
				return nil, fmt.Errorf("tabby entries make no sense in treadle-the-threading mode")
			}

			start, consumed, err := myStoi(str)
			if err != nil {
				return nil, fmt.Errorf("syntax error in treadling range")
			}
			end := start
			if consumed < len(str) && (str[consumed] == '~' || str[consumed] == '-') {
				sep := str[consumed]
				if tabbyRange && sep == '~' {
					return nil, fmt.Errorf("spurious ~ in treadling range")
				}
				if sep == '~' {
					tabbyRange = true
				}
				if tabbyRange && threading {
					return nil, fmt.Errorf("tabby entries make no sense in treadle-the-threading mode")
				}
				str = str[consumed+1:]
				end, consumed, err = myStoi(str)
				if err != nil {
					return nil, fmt.Errorf("syntax error in treadling range")
				}
				str = str[consumed:]
			} else {
				str = str[consumed:]
			}

			if start < 1 || end < 1 {
				return nil, fmt.Errorf("bad treadling range")
			}
			if start > maxPick || end > maxPick {
				return nil, fmt.Errorf("pick list includes picks that are not in the wif file")
			}
			if start <= end {
				for p := start; p <= end; p++ {
					addPick(&pickRange, p, tabbyRange, patternBeforeTabby)
				}
			} else {
				for p := start; p >= end; p-- {
					addPick(&pickRange, p, tabbyRange, patternBeforeTabby)
				}
			}
		}

		if len(str) > 0 && str[0] != ',' {
			return nil, fmt.Errorf("unparsed text in treadling range")
		}
		if len(str) > 0 {
			str = str[1:]
		}
		for i := 0; i < mult; i++ {
			newpicks = append(newpicks, pickRange...)
		}
	}

	return newpicks, nil
}

// CompilePickList compiles a pick-list expression into a concrete sequence
// of pick numbers (interspersed with TabbyA/TabbyB). An empty expression
// means "treadle the whole liftplan, pick 1 through maxPick".
//
// threading selects "treadle the threading" mode (tabby runs and tabby
// ranges are rejected, since there's no shed to auto-tabby against).
func CompilePickList(str string, maxPick int, pattern TabbyPattern, threading bool) ([]int, error) {
	if str == "" {
		picks := make([]int, maxPick)
		for i := range picks {
			picks[i] = i + 1
		}
		return picks, nil
	}

	patternBeforeTabby := pattern == TabbyXAYB || pattern == TabbyXBYA
	tabbyAFirst := pattern == TabbyXAYB || pattern == TabbyAXBY

	picks, err := compilePickTerms(str, maxPick, patternBeforeTabby, threading)
	if err != nil {
		return nil, err
	}

	tabbyIsA := tabbyAFirst
	picksSinceTabby := 10 // anything > 1
	for i, p := range picks {
		if p == autoTabbyMarker {
			if picksSinceTabby > 1 {
				tabbyIsA = tabbyAFirst
			}
			if tabbyIsA {
				picks[i] = TabbyA
			} else {
				picks[i] = TabbyB
			}
			tabbyIsA = !tabbyIsA
			picksSinceTabby = 0
		} else {
			picksSinceTabby++
		}
	}

	return picks, nil
}
