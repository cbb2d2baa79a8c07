// draftconv converts a weaving draft between the WIF and DTX file formats.
//
// Usage:
//
//	draftconv [-o output.ext] input.wif|input.dtx
//
// The output format is the opposite of the input's: a .wif input produces
// a .dtx sibling (and vice versa) unless -o names an explicit path.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	var output string
	flag.StringVar(&output, "o", "", "output file path (default: input path with the opposite extension)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "draftconv - convert a weaving draft between WIF and DTX\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [-o output] input.wif|input.dtx\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  %s huck.wif            # writes huck.dtx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -o out.wif draft.dtx\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	input := flag.Arg(0)

	draft, format, err := LoadDraft(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "draftconv: %v\n", err)
		os.Exit(1)
	}

	outFormat := OtherFormat(format)
	if output == "" {
		ext := filepath.Ext(input)
		output = strings.TrimSuffix(input, ext) + OtherExt(format)
	}

	if err := SaveDraft(draft, output, outFormat); err != nil {
		fmt.Fprintf(os.Stderr, "draftconv: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d ends, %d picks, %d shafts -> %s\n", input, draft.Ends(), draft.Picks(), draft.MaxShafts, output)
}
