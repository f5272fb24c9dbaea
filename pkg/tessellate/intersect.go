package tessellate

import (
	"cmp"
	"slices"

	"github.com/chazu/cpgrid/pkg/bridge"
)

// intersection is a crossing of two wall lines. Line down runs above line
// up at pillar a and below it at pillar b.
type intersection struct {
	down, up       int
	u              float64
	vertex, normal bridge.Index
	// positions of the intersection in the chains of down and up
	atDown, atUp int
}

// other returns the line crossed by line at x.
func (x *intersection) other(line int) int {
	if x.down == line {
		return x.up
	}
	return x.down
}

// stepKind tags a step along a wall line.
type stepKind uint8

const (
	// stepEnd reaches the line's vertex on pillar b.
	stepEnd stepKind = iota
	// stepCrossing reaches an intersection with another line.
	stepCrossing
)

// step is the next stop along a wall line: a pillar vertex id for stepEnd
// or an intersection id for stepCrossing.
type step struct {
	kind  stepKind
	index int
}

// next returns the stop at chain position pos of line, or the line's end
// once pos runs past its chain.
func (w *wall) next(line, pos int) step {
	if pos < w.chainOffsets[line+1] {
		return step{kind: stepCrossing, index: w.chains[pos]}
	}
	return step{kind: stepEnd, index: w.lines[line].b}
}

// intersectWallLines finds every pair of wall lines whose order at pillar b
// is the reverse of their order at pillar a, creates a vertex at each
// crossing and builds the per-line chains of crossings sorted along u.
func (s *sweep) intersectWallLines(w *wall) error {
	n := len(w.lines)
	w.chainOffsets = slices.Grow(w.chainOffsets[:0], n+1)[:n+1]
	clear(w.chainOffsets)
	if n < 2 {
		return nil
	}

	// cutoff[i] is the smallest pillar b vertex of lines i..n-1; once it is
	// not above line i's, no later line can cross it.
	cutoff := slices.Grow(s.cutoff[:0], n)[:n]
	cutoff[n-1] = w.lines[n-1].b
	for i := n - 2; i >= 0; i-- {
		cutoff[i] = min(w.lines[i].b, cutoff[i+1])
	}
	s.cutoff = cutoff

	for i := 0; i < n-1; i++ {
		p := &w.lines[i]
		for j := i + 1; j < n && cutoff[j] < p.b; j++ {
			q := &w.lines[j]
			if q.b >= p.b {
				continue
			}
			if p.sides^q.sides != sidesBoth {
				if err := s.invariant(false, "%s wall lines %d and %d cross on the same side", w.orient, i, j); err != nil {
					return err
				}
				continue
			}
			pos, u := w.sampler.Intersect(s.depth(p.a), s.depth(p.b), s.depth(q.a), s.depth(q.b))
			w.isects = append(w.isects, intersection{
				down:   i,
				up:     j,
				u:      u,
				vertex: s.b.AddVertex(pos, u),
				normal: s.b.AddNormal(w.normal(u, pos.Z)),
			})
		}
	}
	if len(w.isects) == 0 {
		return nil
	}

	// counting sort of the crossings into per-line chains
	for _, x := range w.isects {
		w.chainOffsets[x.down+1]++
		w.chainOffsets[x.up+1]++
	}
	for l := 1; l <= n; l++ {
		w.chainOffsets[l] += w.chainOffsets[l-1]
	}
	total := w.chainOffsets[n]
	w.chains = slices.Grow(w.chains[:0], total)[:total]
	fill := append(s.fill[:0], w.chainOffsets[:n]...)
	for id, x := range w.isects {
		w.chains[fill[x.down]] = id
		fill[x.down]++
		w.chains[fill[x.up]] = id
		fill[x.up]++
	}
	s.fill = fill

	for l := 0; l < n; l++ {
		chain := w.chains[w.chainOffsets[l]:w.chainOffsets[l+1]]
		slices.SortFunc(chain, func(a, b int) int {
			return cmp.Or(cmp.Compare(w.isects[a].u, w.isects[b].u), cmp.Compare(a, b))
		})
		for k, id := range chain {
			x := &w.isects[id]
			if x.down == l {
				x.atDown = w.chainOffsets[l] + k
			} else {
				x.atUp = w.chainOffsets[l] + k
			}
		}
	}
	return nil
}
