// config.go - CLI flags, environment-variable defaults, and the derived
// Options struct the rest of the program is built against.
//
// The teacher never has a configuration layer of its own (main.go reads two
// bare os.Args entries); this follows the one CLI-parsing idiom actually
// attested in the retrieval pack instead - plain stdlib flag, as in
// other_examples' weaver-code cmd/weaver/main.go, with env vars read once at
// construction time rather than through package-level globals (spec.md §9
// "Global mutable state").

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DobbyType is the loom's solenoid polarity.
type DobbyType int

const (
	DobbyPositive DobbyType = iota
	DobbyNegative
	DobbyVirtual
)

func parseDobbyType(s string) (DobbyType, error) {
	switch strings.ToLower(s) {
	case "positive", "+":
		return DobbyPositive, nil
	case "negative", "-":
		return DobbyNegative, nil
	case "virtual":
		return DobbyVirtual, nil
	default:
		return 0, fmt.Errorf("unknown dobby type %q", s)
	}
}

// ColorAlertMode selects when the renderer rings the terminal bell on a
// weft color change (spec.md §4.4).
type ColorAlertMode int

const (
	ColorAlertNone ColorAlertMode = iota
	ColorAlertSimple
	ColorAlertPulse
	ColorAlertAlternating
)

func parseColorAlertMode(s string) (ColorAlertMode, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return ColorAlertNone, nil
	case "simple":
		return ColorAlertSimple, nil
	case "pulse":
		return ColorAlertPulse, nil
	case "alternating":
		return ColorAlertAlternating, nil
	default:
		return 0, fmt.Errorf("unknown color alert mode %q", s)
	}
}

// AnsiMode selects the renderer's color capability.
type AnsiMode int

const (
	AnsiNo AnsiMode = iota
	AnsiYes
	AnsiTruecolor
)

func parseAnsiMode(s string) (AnsiMode, error) {
	switch strings.ToLower(s) {
	case "no":
		return AnsiNo, nil
	case "yes":
		return AnsiYes, nil
	case "truecolor":
		return AnsiTruecolor, nil
	default:
		return 0, fmt.Errorf("unknown --ansi value %q", s)
	}
}

// StartingPick describes the --pick flag's three forms: an explicit 1-based
// pick, "last" (resume from the persisted file), or "last+N".
type StartingPick struct {
	Explicit bool
	Pick     int
	Last     bool
	LastPlus int
}

func parseStartingPick(s string) (StartingPick, error) {
	if s == "" {
		return StartingPick{Explicit: true, Pick: 1}, nil
	}
	if s == "last" {
		return StartingPick{Last: true}, nil
	}
	if strings.HasPrefix(s, "last+") {
		n, err := strconv.Atoi(s[len("last+"):])
		if err != nil {
			return StartingPick{}, fmt.Errorf("bad --pick value %q", s)
		}
		return StartingPick{Last: true, LastPlus: n}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return StartingPick{}, fmt.Errorf("bad --pick value %q", s)
	}
	return StartingPick{Explicit: true, Pick: n}, nil
}

// Options is the fully-resolved configuration for one run: CLI flags
// layered over environment-variable defaults. Built once at startup and
// passed around as a read-only value thereafter (spec.md §9).
type Options struct {
	DraftPath string

	Shafts           int
	DobbyType        DobbyType
	DobbyGeneration  int
	LoomDevice       string
	LoomAddress      string
	StartPick        StartingPick
	PickList         string
	TabbySpec        [2]uint64 // shaft mask for tabby A, tabby B
	TabbyPattern     TabbyPattern
	TabbyColor       Color
	TreadleThreading bool
	ColorAlert       ColorAlertMode
	ASCII            bool
	Ansi             AnsiMode
	FindLoom         bool
	Log              bool
	Check            bool
}

// envOr returns the environment variable's value, or def if it is unset.
func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}

// ParseOptions builds Options from argv, layering CLI flags over
// DRAWBOY_* environment defaults (CLI wins on conflict, per spec.md §6).
func ParseOptions(argv []string) (*Options, error) {
	fs := flag.NewFlagSet("drawboy", flag.ContinueOnError)

	cd1 := fs.Bool("cd1", false, "Compu-Dobby generation 1")
	cd2 := fs.Bool("cd2", false, "Compu-Dobby generation 2")
	cd3 := fs.Bool("cd3", false, "Compu-Dobby generation 3")
	cd4 := fs.Bool("cd4", false, "Compu-Dobby generation 4")
	net := fs.Bool("net", false, "loom is reached over the network")
	fs.BoolVar(net, "n", false, "shorthand for -net")
	pick := fs.String("pick", "", "starting pick: N, last, or last+N")
	fs.StringVar(pick, "p", "", "shorthand for --pick")
	picks := fs.String("picks", "", "pick-list expression")
	fs.StringVar(picks, "P", "", "shorthand for --picks")
	tabby := fs.String("tabby", "", "tabby shaft spec, e.g. 1.3.5.7a 2.4.6.8b")
	tabbyPattern := fs.String("tabbyPattern", "xAyB", "xAyB|AxBy|xByA|BxAy")
	tabbyColor := fs.String("tabbycolor", "", "3 or 6 digit hex tabby color")
	threading := fs.Bool("threading", false, "treadle the threading instead of the liftplan")
	loomDevice := fs.String("loomDevice", "", "serial device path")
	loomAddress := fs.String("loomAddress", "", "TCP host[:port]")
	shafts := fs.Int("shafts", 0, "loom shaft capacity")
	dobbyType := fs.String("dobbyType", "", "positive|negative|+|-|virtual")
	colorAlert := fs.String("colorAlert", "", "none|simple|pulse|alternating")
	ascii := fs.Bool("ascii", false, "ASCII-only rendering")
	ansi := fs.String("ansi", "", "no|yes|truecolor")
	findLoom := fs.Bool("findloom", false, "probe for a loom and print what was found")
	logFlag := fs.Bool("log", false, "write a wire-protocol transcript")
	check := fs.Bool("check", false, "load and validate the draft, then exit")

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, fmt.Errorf("usage: drawboy [flags] DRAFT_PATH")
	}

	opts := &Options{DraftPath: fs.Arg(0)}

	gen := 0
	switch {
	case *cd1:
		gen = 1
	case *cd2:
		gen = 2
	case *cd3:
		gen = 3
	case *cd4:
		gen = 4
	default:
		if v := envOr("DRAWBOY_DOBBYGENERATION", ""); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("bad DRAWBOY_DOBBYGENERATION value %q", v)
			}
			gen = n
		}
	}
	if gen < 1 || gen > 4 {
		return nil, fmt.Errorf("exactly one of --cd1/--cd2/--cd3/--cd4 is required")
	}
	opts.DobbyGeneration = gen

	opts.LoomDevice = firstNonEmpty(*loomDevice, envOr("DRAWBOY_LOOMDEVICE", ""))
	opts.LoomAddress = firstNonEmpty(*loomAddress, envOr("DRAWBOY_LOOMADDRESS", ""))
	if *net && opts.LoomAddress == "" {
		return nil, fmt.Errorf("-net requires --loomAddress or DRAWBOY_LOOMADDRESS")
	}
	if opts.LoomDevice == "" && opts.LoomAddress == "" {
		return nil, fmt.Errorf("exactly one of --loomDevice or --loomAddress is required")
	}
	if opts.LoomDevice != "" && opts.LoomAddress != "" {
		return nil, fmt.Errorf("--loomDevice and --loomAddress are mutually exclusive")
	}

	shaftsStr := envOr("DRAWBOY_SHAFTS", "8")
	opts.Shafts = *shafts
	if opts.Shafts == 0 {
		n, err := strconv.Atoi(shaftsStr)
		if err != nil {
			return nil, fmt.Errorf("bad DRAWBOY_SHAFTS value %q", shaftsStr)
		}
		opts.Shafts = n
	}

	dtStr := firstNonEmpty(*dobbyType, envOr("DRAWBOY_DOBBYTYPE", "positive"))
	dt, err := parseDobbyType(dtStr)
	if err != nil {
		return nil, err
	}
	opts.DobbyType = dt

	sp, err := parseStartingPick(*pick)
	if err != nil {
		return nil, err
	}
	opts.StartPick = sp
	opts.PickList = *picks
	opts.TreadleThreading = *threading

	pat, err := ParseTabbyPattern(*tabbyPattern)
	if err != nil {
		return nil, err
	}
	opts.TabbyPattern = pat

	if *tabby != "" {
		a, b, err := parseTabbySpec(*tabby, opts.Shafts)
		if err != nil {
			return nil, err
		}
		opts.TabbySpec = [2]uint64{a, b}
	}

	if *tabbyColor != "" {
		c, err := ParseColorHex(*tabbyColor)
		if err != nil {
			return nil, fmt.Errorf("--tabbycolor: %w", err)
		}
		opts.TabbyColor = c
	} else {
		opts.TabbyColor = Color{Red: 1, Green: 1, Blue: 1}
	}

	caStr := firstNonEmpty(*colorAlert, envOr("DRAWBOY_COLORALERT", "none"))
	ca, err := parseColorAlertMode(caStr)
	if err != nil {
		return nil, err
	}
	opts.ColorAlert = ca

	opts.ASCII = *ascii || envOr("DRAWBOY_ASCII", "") == "1"

	ansiStr := firstNonEmpty(*ansi, envOr("DRAWBOY_ANSI", "yes"))
	am, err := parseAnsiMode(ansiStr)
	if err != nil {
		return nil, err
	}
	opts.Ansi = am

	opts.FindLoom = *findLoom
	opts.Log = *logFlag
	opts.Check = *check

	return opts, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseTabbySpec parses "1.3.5.7a 2.4.6.8b"-shaped text: shaft numbers
// (1-based, separated by '.') followed by 'a' or 'b' assign those shafts to
// that tabby shed.
// Either order, separated by whitespace or a comma.
func parseTabbySpec(s string, maxShafts int) (a, b uint64, err error) {
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	}) {
		if field == "" {
			continue
		}
		letter := field[len(field)-1]
		digits := field[:len(field)-1]
		if letter != 'a' && letter != 'A' && letter != 'b' && letter != 'B' {
			return 0, 0, fmt.Errorf("tabby spec %q: must end in a or b", field)
		}
		var mask uint64
		for _, tok := range strings.Split(digits, ".") {
			if tok == "" {
				continue
			}
			n, err := strconv.Atoi(tok)
			if err != nil || n < 1 || n > maxShafts {
				return 0, 0, fmt.Errorf("tabby spec %q: bad shaft number", field)
			}
			mask |= 1 << uint(n-1)
		}
		if letter == 'a' || letter == 'A' {
			a |= mask
		} else {
			b |= mask
		}
	}
	return a, b, nil
}
