// draft.go - the in-memory weaving draft: threading, tieup/liftplan, colors

package main

// Draft is the abstract shape both the WIF and DTX loaders produce, and the
// only shape the rest of the program (pick compiler, view, protocol engine,
// renderer) ever sees.
//
// Shaft/treadle/end/pick numbers are 1-based throughout, matching the file
// formats and the original driver; index 0 of Threading/Liftplan/Tieup is
// unused padding so pick N can be read as Liftplan[N] directly.
type Draft struct {
	MaxShafts   int
	MaxTreadles int
	RisingShed  bool // false means the loom is a sinking-shed loom

	Threading []uint64 // Threading[end] = bitmask of shafts that end passes through (0 or 1 bit set)
	Tieup     []uint64 // Tieup[treadle] = bitmask of shafts that treadle lifts (rising) or sinks
	Liftplan  []uint64 // Liftplan[pick] = bitmask of shafts raised on that pick

	WarpColor []Color // WarpColor[end]
	WeftColor []Color // WeftColor[pick]
}

// Ends returns the number of warp ends, derived from Threading's length.
func (d *Draft) Ends() int {
	if len(d.Threading) == 0 {
		return 0
	}
	return len(d.Threading) - 1
}

// Picks returns the number of weft picks in the liftplan.
func (d *Draft) Picks() int {
	if len(d.Liftplan) == 0 {
		return 0
	}
	return len(d.Liftplan) - 1
}

// LiftplanFromTieup expands a treadling sequence through a tieup into a
// liftplan: treadling[pick] is the bitmask of treadles pressed on that pick.
func LiftplanFromTieup(tieup []uint64, treadling []uint64) []uint64 {
	liftplan := make([]uint64, 0, len(treadling))
	for _, treadles := range treadling {
		var lift uint64
		for treadle := 1; treadles != 0; treadle++ {
			if treadles&1 != 0 {
				if treadle < len(tieup) {
					lift |= tieup[treadle]
				}
			}
			treadles >>= 1
		}
		liftplan = append(liftplan, lift)
	}
	return liftplan
}
