package flex

import (
	"sort"
	"strings"

	"github.com/FocuswithJustin/WikiruKit/core/errors"
)

const regionMarker = "#region"

// Insertion is a rendered block destined for the region above a directive.
// An empty Block asks for the region's generated blocks to be cleared.
type Insertion struct {
	Line  int // directive line
	Block string
}

// regionEdit gathers the blocks bound for one region line.
type regionEdit struct {
	region int
	blocks []string
}

// InsertBlocks splices each block in front of the nearest #region line above
// its directive. Blocks that share a region are stacked in insertion order.
//
// Generated flex blocks already sitting directly above a region are treated
// as the output of an earlier run: identical ones are left alone and stale
// ones are replaced, so rebuilding an article twice changes nothing.
//
// A region whose insertions are all empty loses its generated run and gets
// nothing in its place.
//
// A directive with no region above it gets no block and yields a
// *errors.PreconditionError, unless its block is empty. All other lines are
// kept verbatim.
func InsertBlocks(lines []string, insertions []Insertion) ([]string, []error) {
	var errs []error
	edits := map[int]*regionEdit{}
	for _, ins := range insertions {
		region := findRegion(lines, ins.Line)
		if region < 0 {
			if ins.Block == "" {
				continue
			}
			errs = append(errs, errors.NewPrecondition(ins.Line, "no #region line above includex"))
			continue
		}
		e, ok := edits[region]
		if !ok {
			e = &regionEdit{region: region}
			edits[region] = e
		}
		if ins.Block != "" {
			e.blocks = append(e.blocks, ins.Block)
		}
	}

	regions := make([]int, 0, len(edits))
	for r := range edits {
		regions = append(regions, r)
	}
	sort.Ints(regions)

	drop := make([]bool, len(lines))
	prefix := make([]string, len(lines))
	suffix := make([]string, len(lines))
	for _, r := range regions {
		block := strings.Join(edits[r].blocks, "\n")
		start := generatedRunStart(lines, r)
		if start < r && sameText(lines[start:r], block) {
			continue
		}
		for i := start; i < r; i++ {
			drop[i] = true
		}
		if block == "" {
			continue
		}
		if start > 0 {
			suffix[start-1] += "\n" + block
		} else {
			prefix[r] = block + "\n" + prefix[r]
		}
	}

	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if drop[i] {
			continue
		}
		out = append(out, prefix[i]+line+suffix[i])
	}
	return out, errs
}

// findRegion returns the nearest line above directive that contains the region
// marker, or -1.
func findRegion(lines []string, directive int) int {
	for i := directive - 1; i >= 0; i-- {
		if i < len(lines) && strings.Contains(lines[i], regionMarker) {
			return i
		}
	}
	return -1
}

// generatedRunStart walks upward from region over consecutive flex blocks
// made only of row separators and cells, and returns the first line of the
// run (region itself when there is none).
func generatedRunStart(lines []string, region int) int {
	start := region
	for k := region - 1; k >= 0; {
		if strings.TrimSpace(lines[k]) != flexClose {
			break
		}
		m := k - 1
		for m >= 0 && isBlockBody(lines[m]) {
			m--
		}
		if m < 0 || strings.TrimSpace(lines[m]) != flexOpen {
			break
		}
		start = m
		k = m - 1
	}
	return start
}

func isBlockBody(line string) bool {
	s := strings.TrimSpace(line)
	return s == flexRow || strings.HasPrefix(s, "|")
}

func sameText(lines []string, block string) bool {
	want := strings.Split(block, "\n")
	if len(want) != len(lines) {
		return false
	}
	for i := range lines {
		if strings.TrimSpace(lines[i]) != strings.TrimSpace(want[i]) {
			return false
		}
	}
	return true
}
