package csg

import (
	"math"

	"github.com/chazu/carve/pkg/geom"
)

// maxConformDepth bounds how many times the fragments of one face are
// split again.
const maxConformDepth = 32

// ConformEdges removes T-junctions: every face edge with another vertex of
// m lying strictly inside it (within Config.Tolerance) is split at that
// vertex, the face being replaced by two. Splits that would leave a
// degenerate half are skipped. The vertex inserted into the
// face is interpolated from it, so attributes stay continuous across the
// face. It returns the number of splits.
func (m *Mesh) ConformEdges() int {
	eps := m.Config.Tolerance
	if len(m.Faces) == 0 {
		return 0
	}
	grid := newVertexGrid(m, eps)
	pool := newVertexPool(eps)

	type item struct{ face, depth int }
	work := make([]item, 0, len(m.Faces))
	for i := len(m.Faces) - 1; i >= 0; i-- {
		work = append(work, item{face: i})
	}

	splits := 0
	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]
		if it.depth >= maxConformDepth {
			continue
		}

		tri := m.Triangle(it.face)
		if tri.Degenerate(eps) {
			continue
		}
		f := m.Faces[it.face]
		for e := 0; e < 3; e++ {
			a, b, c := f.V[e], f.V[(e+1)%3], f.V[(e+2)%3]
			p, ok := grid.interior(m.Vertices[a].Position, m.Vertices[b].Position, m.Vertices[c].Position)
			if !ok {
				continue
			}
			pc := m.Vertices[c].Position
			if (geom.Triangle{P1: m.Vertices[a].Position, P2: p, P3: pc}).Degenerate(eps) ||
				(geom.Triangle{P1: p, P2: m.Vertices[b].Position, P3: pc}).Degenerate(eps) {
				continue
			}

			normal := tri.Normal()
			idx, found := pool.find(p, normal)
			if !found {
				idx = m.AddVertex(m.interpolate(f, tri, p))
				pool.add(idx, p, normal)
			}

			m.Faces[it.face] = Face{V: [3]int{a, idx, c}, boundary: f.boundary}
			m.Faces = append(m.Faces, Face{V: [3]int{idx, b, c}, boundary: f.boundary})
			work = append(work,
				item{face: len(m.Faces) - 1, depth: it.depth + 1},
				item{face: it.face, depth: it.depth + 1})
			splits++
			break
		}
	}

	if splits > 0 {
		Logger().Debug("csg: conformed edges", "splits", splits, "faces", len(m.Faces))
	}
	return splits
}

// vertexGrid is a uniform grid over the vertex positions of a mesh.
type vertexGrid struct {
	eps   float64
	size  float64
	pos   []geom.Vec
	cells map[cell][]int
}

func newVertexGrid(m *Mesh, eps float64) *vertexGrid {
	ext := m.Bounds().Size()
	extent := math.Max(ext.X, math.Max(ext.Y, ext.Z))
	n := math.Ceil(math.Cbrt(float64(len(m.Vertices))))
	size := math.Max(extent/math.Max(n, 1), 4*eps)

	g := &vertexGrid{
		eps:   eps,
		size:  size,
		pos:   make([]geom.Vec, len(m.Vertices)),
		cells: make(map[cell][]int),
	}
	for i, v := range m.Vertices {
		g.pos[i] = v.Position
		k := g.key(v.Position)
		g.cells[k] = append(g.cells[k], i)
	}
	return g
}

func (g *vertexGrid) key(v geom.Vec) cell {
	return cell{
		x: int64(math.Floor(v.X / g.size)),
		y: int64(math.Floor(v.Y / g.size)),
		z: int64(math.Floor(v.Z / g.size)),
	}
}

// interior returns the vertex position closest to a lying strictly inside
// the segment a-b, more than eps from both ends and within eps of the
// segment. Positions near opp, the face corner opposite the edge, are
// ignored.
func (g *vertexGrid) interior(a, b, opp geom.Vec) (geom.Vec, bool) {
	seg := geom.Segment{A: a, B: b}
	length := seg.Length()
	if length <= 2*g.eps {
		return geom.Vec{}, false
	}
	ray := seg.Ray()

	seen := make(map[cell]struct{})
	best := math.Inf(1)
	var out geom.Vec
	steps := int(math.Ceil(length / g.size))
	for s := 0; s <= steps; s++ {
		k := g.key(ray.At(math.Min(float64(s)*g.size, length)))
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					c := cell{k.x + dx, k.y + dy, k.z + dz}
					if _, ok := seen[c]; ok {
						continue
					}
					seen[c] = struct{}{}
					for _, i := range g.cells[c] {
						p := g.pos[i]
						t := ray.Parameter(p)
						if t <= g.eps || t >= length-g.eps || t >= best {
							continue
						}
						if ray.DistanceTo(p) > g.eps || geom.Near(p, opp, g.eps) {
							continue
						}
						best = t
						out = p
					}
				}
			}
		}
	}
	return out, !math.IsInf(best, 1)
}
