// Package editseq extracts ordered runs of added and removed lines from a
// line-level comparison of two text versions.
package editseq

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Direction tells which side of the comparison a run belongs to.
type Direction uint8

const (
	// Added marks a run of lines present only in version B.
	Added Direction = iota + 1
	// Removed marks a run of lines present only in version A.
	Removed
)

// String returns "+" for added and "-" for removed runs.
func (d Direction) String() string {
	if d == Added {
		return "+"
	}

	return "-"
}

// Run is a maximal contiguous span of purely-added or purely-removed lines.
// Start and End are 1-based inclusive line numbers in the numbering of the
// respective version: version B for added runs, version A for removed ones.
type Run struct {
	Dir   Direction
	Start int
	End   int
}

// runState is the open-run tracking state of the coalescing machine:
// no run open, or a run open in one direction.
type runState uint8

const (
	stateNoRun runState = iota
	stateRunAdded
	stateRunRemoved
)

// Extract compares two sources line by line and returns the edit runs in the
// order their closing positions occur. Consecutive same-direction lines
// coalesce into one run; a run closes when the direction changes or an
// unchanged line appears. Adjacent opposite-direction runs are emitted
// independently, never merged. Identical inputs yield an empty list.
func Extract(textA, textB string) []Run {
	dmp := diffmatchpatch.New()

	// Line-mode diff: every rune in the intermediate encoding stands for one
	// line, so rune counts below are line counts.
	runesA, runesB, _ := dmp.DiffLinesToRunes(textA, textB)
	diffs := dmp.DiffMainRunes(runesA, runesB, false)

	var (
		runs  []Run
		state runState
		open  Run
		lineA int
		lineB int
	)

	closeOpen := func() {
		if state == stateNoRun {
			return
		}

		if state == stateRunAdded {
			open.End = lineB
		} else {
			open.End = lineA
		}

		runs = append(runs, open)
		state = stateNoRun
	}

	for _, edit := range diffs {
		lines := utf8.RuneCountInString(edit.Text)
		if lines == 0 {
			continue
		}

		switch edit.Type {
		case diffmatchpatch.DiffInsert:
			if state == stateRunRemoved {
				closeOpen()
			}

			if state == stateNoRun {
				open = Run{Dir: Added, Start: lineB + 1}
				state = stateRunAdded
			}

			lineB += lines
		case diffmatchpatch.DiffDelete:
			if state == stateRunAdded {
				closeOpen()
			}

			if state == stateNoRun {
				open = Run{Dir: Removed, Start: lineA + 1}
				state = stateRunRemoved
			}

			lineA += lines
		case diffmatchpatch.DiffEqual:
			closeOpen()

			lineA += lines
			lineB += lines
		}
	}

	closeOpen()

	return runs
}
