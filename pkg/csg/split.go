package csg

import (
	"slices"

	"github.com/chazu/carve/pkg/geom"
	"github.com/chazu/carve/pkg/intersect"
)

// SplitTriangles splits the faces of m along their intersection with the
// faces of other, so that afterwards no face of m crosses the surface of
// other. other is not modified.
//
// Faces are processed from a worklist. A face crossed by a face of other
// is clipped by that face's plane; its fragments replace it and go back
// on the worklist to be tested against every face of other again. Faces
// overlapping a coplanar face of other are flagged as boundary faces when
// Config.EnableBoundaryFaces is set. The simplification pass runs at the
// end when Config.EnableMerging is set.
func (m *Mesh) SplitTriangles(other *Mesh) (err error) {
	defer recoverInvariant("csg: split", &err)

	cfg := m.Config
	eps := cfg.Tolerance
	pool := newVertexPool(eps)
	m.cutEdges = m.cutEdges[:0]

	tris := make([]geom.Triangle, len(other.Faces))
	boxes := make([]geom.Box, len(other.Faces))
	for i := range other.Faces {
		tris[i] = other.Triangle(i)
		boxes[i] = tris[i].Bounds()
	}

	work := make([]int, 0, len(m.Faces))
	for i := len(m.Faces) - 1; i >= 0; i-- {
		work = append(work, i)
	}

	var splits int
	for len(work) > 0 {
		fi := work[len(work)-1]
		work = work[:len(work)-1]
		m.Faces[fi].boundary = false

		tri := m.Triangle(fi)
		box := tri.Bounds()
		for gi, g := range tris {
			if !box.Overlaps(boxes[gi], eps) {
				continue
			}
			res, seg := intersect.TriangleTriangle(tri, g, eps)
			if res == intersect.CoplanarFaceFace {
				if cfg.EnableBoundaryFaces {
					m.Faces[fi].boundary = true
				}
				continue
			}
			// A sliver crossing g's plane along a chord shorter than eps
			// reports a point, but its corners still lie on both sides.
			if !res.HasSegment() && !(res == intersect.Point && straddles(tri, g.Plane(), eps)) {
				continue
			}
			m.cutEdges = append(m.cutEdges, seg)
			frags := m.splitFace(fi, tri, g.Plane(), pool)
			if frags == nil {
				continue
			}
			splits++
			work = append(work, frags...)
			break
		}
	}

	Logger().Debug("csg: split",
		"faces", len(m.Faces),
		"vertices", len(m.Vertices),
		"splits", splits,
		"cut_edges", len(m.cutEdges))

	if cfg.EnableMerging && cfg.MergePasses > 0 {
		m.simplify(cfg.MergePasses)
	}
	return nil
}

// corner is a fragment corner: an arena index, or a pending vertex to be
// created at pos when index is negative.
type corner struct {
	index int
	pos   geom.Vec
}

// splitFace clips face fi by pl. It returns the indices of the fragments,
// the first of which reuses slot fi, or nil if the face is unchanged.
// A single fragment still replaces the face when the clip moved one of
// its corners onto the plane.
func (m *Mesh) splitFace(fi int, tri geom.Triangle, pl geom.Plane, pool *vertexPool) []int {
	eps := m.Config.Tolerance
	back, front := geom.SplitTriangle(tri, pl, eps)
	if back == nil && front == nil {
		return nil
	}
	f := m.Faces[fi]
	normal := tri.Normal()

	var pending []geom.Vec
	resolve := func(p geom.Vec) corner {
		for _, idx := range f.V {
			if geom.Near(m.Vertices[idx].Position, p, eps) {
				return corner{index: idx}
			}
		}
		if idx, ok := pool.find(p, normal); ok {
			return corner{index: idx}
		}
		for k, q := range pending {
			if geom.Near(q, p, eps) {
				return corner{index: -1 - k, pos: q}
			}
		}
		pending = append(pending, p)
		return corner{index: -len(pending), pos: p}
	}

	var frags [][3]corner
	for _, t := range append(back, front...) {
		c := [3]corner{resolve(t.P1), resolve(t.P2), resolve(t.P3)}
		if c[0].index == c[1].index || c[1].index == c[2].index || c[2].index == c[0].index {
			continue
		}
		frags = append(frags, c)
	}
	if len(frags) == 0 || len(frags) == 1 && sameFace(frags[0], f) {
		return nil
	}

	created := make([]int, len(pending))
	for k, p := range pending {
		created[k] = m.AddVertex(m.interpolate(f, tri, p))
		pool.add(created[k], p, normal)
	}
	index := func(c corner) int {
		if c.index >= 0 {
			return c.index
		}
		return created[-1-c.index]
	}

	out := make([]int, 0, len(frags))
	for k, c := range frags {
		nf := Face{V: [3]int{index(c[0]), index(c[1]), index(c[2])}}
		if k == 0 {
			m.Faces[fi] = nf
			out = append(out, fi)
			continue
		}
		m.Faces = append(m.Faces, nf)
		out = append(out, len(m.Faces)-1)
	}
	return out
}

// straddles reports whether pl separates the corners of t while cutting
// it along a chord no longer than eps.
func straddles(t geom.Triangle, pl geom.Plane, eps float64) bool {
	s := pl.Sides(t, eps)
	if !slices.Contains(s[:], 1) || !slices.Contains(s[:], -1) {
		return false
	}
	pts := t.Points()
	var chord []geom.Vec
	for i := range 3 {
		j := (i + 1) % 3
		switch {
		case s[i] == 0:
			chord = append(chord, pts[i])
		case s[i]*s[j] < 0:
			da, db := pl.Distance(pts[i]), pl.Distance(pts[j])
			chord = append(chord, geom.Lerp(pts[i], pts[j], da/(da-db)))
		}
	}
	for _, p := range chord {
		for _, q := range chord {
			if !geom.Near(p, q, eps) {
				return false
			}
		}
	}
	return true
}

// sameFace reports whether the fragment has exactly the corners of f.
func sameFace(c [3]corner, f Face) bool {
	for _, x := range c {
		if x.index < 0 || !slices.Contains(f.V[:], x.index) {
			return false
		}
	}
	return true
}

// interpolate builds a vertex at p from the three vertices of f using the
// barycentric weights of p in tri. Normal and tangent are renormalized;
// extra channels are blended linearly.
func (m *Mesh) interpolate(f Face, tri geom.Triangle, p geom.Vec) Vertex {
	u, v, w := tri.Barycentric(p)
	a, b, c := m.Vertices[f.V[0]], m.Vertices[f.V[1]], m.Vertices[f.V[2]]

	blend := func(x, y, z geom.Vec) geom.Vec {
		return geom.Normalize(x.MulScalar(u).Add(y.MulScalar(v)).Add(z.MulScalar(w)))
	}
	out := Vertex{
		Position: p,
		Normal:   blend(a.Normal, b.Normal, c.Normal),
		Tangent:  blend(a.Tangent, b.Tangent, c.Tangent),
	}
	if n := len(a.Extra); n > 0 {
		out.Extra = make([]float32, n)
		for i := range out.Extra {
			out.Extra[i] = float32(u)*a.Extra[i] + float32(v)*extra(b, i) + float32(w)*extra(c, i)
		}
	}
	return out
}

func extra(v Vertex, i int) float32 {
	if i < len(v.Extra) {
		return v.Extra[i]
	}
	return 0
}
