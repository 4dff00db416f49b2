package csg

import (
	"cmp"
	"math"
	"slices"

	"github.com/chazu/carve/pkg/geom"
	"github.com/chazu/carve/pkg/intersect"
)

// classifyDirection is the fixed ray direction used for classification.
var classifyDirection = geom.Vec{Y: 1}

// ClassifyFaces records the InsideStatus of every vertex of m against
// other. The result is read by RemoveFaces and Status.
func (m *Mesh) ClassifyFaces(other *Mesh) (err error) {
	defer recoverInvariant("csg: classify", &err)

	eps := m.Config.Tolerance
	c := newClassifier(other, eps)
	m.status = make([]InsideStatus, len(m.Vertices))

	var counts [4]int
	for i, v := range m.Vertices {
		s := c.status(v.Position)
		m.status[i] = s
		counts[s]++
	}
	Logger().Debug("csg: classified vertices",
		"inside", counts[Inside],
		"outside", counts[Outside],
		"boundary", counts[Boundary])
	return nil
}

// ComputeInsideStatus classifies p against the closed mesh by casting a
// ray along +y and looking at the nearest face it hits: p is Inside if
// that face faces up (the ray leaves the solid through it), Outside if it
// faces down or nothing is hit, and Boundary if p lies on the surface.
//
// A ray grazing a face it is coplanar with only matters when the grazed
// chord covers p, which makes p Boundary. Hits within eps of each other
// are tied. A tie whose faces all face the same way counts once, so rays
// through an edge or corner shared by several faces do not depend on face
// order. A tie mixing up and down faces is a ray touching a silhouette
// edge from outside the surface there; it is passed over and the next hit
// decides.
func ComputeInsideStatus(p geom.Vec, mesh *Mesh, eps float64) (status InsideStatus, err error) {
	defer recoverInvariant("csg: classify", &err)
	return newClassifier(mesh, eps).status(p), nil
}

type classifier struct {
	eps   float64
	tris  []geom.Triangle
	boxes []geom.Box
}

func newClassifier(mesh *Mesh, eps float64) *classifier {
	c := &classifier{
		eps:   eps,
		tris:  make([]geom.Triangle, len(mesh.Faces)),
		boxes: make([]geom.Box, len(mesh.Faces)),
	}
	for i := range mesh.Faces {
		c.tris[i] = mesh.Triangle(i)
		c.boxes[i] = c.tris[i].Bounds()
	}
	return c
}

func (c *classifier) status(p geom.Vec) InsideStatus {
	eps := c.eps
	ray := geom.Ray{Origin: p, Direction: classifyDirection}

	type hit struct {
		t  float64
		up bool
	}
	var hits []hit
	for i, tri := range c.tris {
		b := c.boxes[i]
		// The ray is vertical: only faces spanning p in x and z, and
		// reaching at least p's height, can be hit.
		if p.X < b.Min.X-eps || p.X > b.Max.X+eps ||
			p.Z < b.Min.Z-eps || p.Z > b.Max.Z+eps ||
			b.Max.Y < p.Y-eps {
			continue
		}

		seg, ok := intersect.TriangleRay(tri, ray, eps)
		if !ok {
			continue
		}
		d := ray.Direction.Dot(tri.Normal())
		t := ray.Parameter(seg.A)

		if math.Abs(d) <= eps {
			t2 := ray.Parameter(seg.B)
			if math.Min(t, t2) < eps && math.Max(t, t2) > -eps {
				return Boundary
			}
			continue
		}
		if math.Abs(t) <= eps {
			return Boundary
		}
		if t < 0 {
			continue
		}
		hits = append(hits, hit{t: t, up: d > 0})
	}

	slices.SortFunc(hits, func(a, b hit) int { return cmp.Compare(a.t, b.t) })
	for i := 0; i < len(hits); {
		var up, down int
		j := i
		for ; j < len(hits) && hits[j].t-hits[i].t <= eps; j++ {
			if hits[j].up {
				up++
			} else {
				down++
			}
		}
		if up == 0 || down == 0 {
			if up > 0 {
				return Inside
			}
			return Outside
		}
		i = j
	}
	return Outside
}
