package csg

import (
	"slices"

	"github.com/chazu/carve/pkg/geom"
	"github.com/chazu/carve/pkg/intersect"
)

// simplify runs up to passes merge passes and stops early once a pass
// merges nothing. It returns the number of merges.
func (m *Mesh) simplify(passes int) int {
	total := 0
	for p := 0; p < passes; p++ {
		n := m.mergePass()
		total += n
		if n == 0 {
			break
		}
	}
	if total > 0 {
		Logger().Debug("csg: merged faces", "merges", total, "faces", len(m.Faces))
	}
	return total
}

// merger holds the incidence and tombstones of one merge pass.
type merger struct {
	m        *Mesh
	eps      float64
	incident map[int][]int // vertex -> faces using it
	dead     []bool
}

// mergePass visits every live face once and merges it with its neighbours
// for as long as a merge is possible. Merged-away faces are removed at the
// end of the pass.
func (m *Mesh) mergePass() int {
	g := &merger{
		m:        m,
		eps:      m.Config.Tolerance,
		incident: make(map[int][]int, len(m.Vertices)),
		dead:     make([]bool, len(m.Faces)),
	}
	for i, f := range m.Faces {
		for _, v := range f.V {
			g.incident[v] = append(g.incident[v], i)
		}
	}

	merges := 0
	for i := range m.Faces {
		if g.dead[i] {
			continue
		}
		for g.mergeOnce(i) {
			merges++
		}
	}
	if merges == 0 {
		return 0
	}

	live := m.Faces[:0]
	for i, f := range m.Faces {
		if !g.dead[i] {
			live = append(live, f)
		}
	}
	clear(m.Faces[len(live):])
	m.Faces = live
	return merges
}

// neighbours returns the live faces other than fi that use a vertex of fi,
// in index order.
func (g *merger) neighbours(fi int) []int {
	var out []int
	for _, v := range g.m.Faces[fi].V {
		for _, j := range g.incident[v] {
			if j != fi && !g.dead[j] {
				out = append(out, j)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// mergeOnce merges face fi with the first neighbour it can absorb.
//
// The neighbour must share exactly one edge (first, second) with fi. Let
// a be fi's other vertex and b the neighbour's. Exactly one of the shared
// vertices must lie on the segment a-b; the two triangles then form a
// single triangle {a, other shared vertex, b}. Shared edges lying on a
// cut edge are kept, since classification depends on them.
func (g *merger) mergeOnce(fi int) bool {
	m := g.m
	face := m.Faces[fi]
	for _, j := range g.neighbours(fi) {
		nb := m.Faces[j]

		var shared []int
		a := -1
		for _, v := range face.V {
			if slices.Contains(nb.V[:], v) {
				shared = append(shared, v)
			} else {
				a = v
			}
		}
		if len(shared) != 2 {
			continue
		}
		b := -1
		for _, v := range nb.V {
			if v != shared[0] && v != shared[1] {
				b = v
			}
		}

		first, second := shared[0], shared[1]
		onFirst := g.between(a, b, first)
		onSecond := g.between(a, b, second)
		if onFirst == onSecond {
			continue
		}
		if g.onCutEdge(first, second) {
			continue
		}

		keep, drop := first, second
		if onFirst {
			keep, drop = second, first
		}
		merged := Face{V: [3]int{a, keep, b}, boundary: face.boundary || nb.boundary}
		if g.normal(merged).Dot(g.normal(nb)) < 0 {
			merged.V[1], merged.V[2] = merged.V[2], merged.V[1]
		}

		m.Faces[fi] = merged
		g.dead[j] = true
		g.detach(drop, fi)
		g.incident[b] = append(g.incident[b], fi)
		return true
	}
	return false
}

// between reports whether vertex mid lies on the segment a-b, strictly
// between its endpoints.
func (g *merger) between(a, b, mid int) bool {
	pa := g.m.Vertices[a].Position
	pb := g.m.Vertices[b].Position
	pm := g.m.Vertices[mid].Position

	ab := geom.Segment{A: pa, B: pb}
	res, _ := intersect.SegmentSegment(ab, geom.Segment{A: pa, B: pm}, g.eps)
	if res != intersect.LineCollinear {
		return false
	}
	t := ab.Ray().Parameter(pm)
	return t > g.eps && t < ab.Length()-g.eps
}

func (g *merger) onCutEdge(u, v int) bool {
	s := geom.Segment{A: g.m.Vertices[u].Position, B: g.m.Vertices[v].Position}
	box := s.Bounds()
	for _, c := range g.m.cutEdges {
		if !box.Overlaps(c.Bounds(), g.eps) {
			continue
		}
		if res, _ := intersect.SegmentSegment(c, s, g.eps); res == intersect.LineCollinear {
			return true
		}
	}
	return false
}

func (g *merger) normal(f Face) geom.Vec {
	v := g.m.Vertices
	return geom.Triangle{P1: v[f.V[0]].Position, P2: v[f.V[1]].Position, P3: v[f.V[2]].Position}.Normal()
}

func (g *merger) detach(v, fi int) {
	faces := g.incident[v]
	if k := slices.Index(faces, fi); k >= 0 {
		g.incident[v] = slices.Delete(faces, k, k+1)
	}
}
