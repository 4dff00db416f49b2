package csg

import (
	"math"

	"github.com/chazu/carve/pkg/geom"
)

// cell is a key of the spatial hash.
type cell struct{ x, y, z int64 }

// vertexPool indexes the vertices created during one split run so that
// cut points shared by neighbouring faces resolve to one vertex.
type vertexPool struct {
	eps   float64
	size  float64
	cells map[cell][]pooled
}

type pooled struct {
	index  int
	pos    geom.Vec
	normal geom.Vec // normal of the face the vertex was cut from
}

func newVertexPool(eps float64) *vertexPool {
	return &vertexPool{
		eps:   eps,
		size:  4 * eps,
		cells: make(map[cell][]pooled),
	}
}

func (p *vertexPool) key(v geom.Vec) cell {
	return cell{
		x: int64(math.Floor(v.X / p.size)),
		y: int64(math.Floor(v.Y / p.size)),
		z: int64(math.Floor(v.Z / p.size)),
	}
}

func (p *vertexPool) add(index int, pos, normal geom.Vec) {
	k := p.key(pos)
	p.cells[k] = append(p.cells[k], pooled{index: index, pos: pos, normal: normal})
}

// find returns the earliest pooled vertex within eps of pos that was cut
// from a face with the given normal.
func (p *vertexPool) find(pos, normal geom.Vec) (int, bool) {
	return p.match(pos, &normal)
}

// weld returns the earliest pooled vertex within eps of pos, whatever its
// normal.
func (p *vertexPool) weld(pos geom.Vec) (int, bool) {
	return p.match(pos, nil)
}

func (p *vertexPool) match(pos geom.Vec, normal *geom.Vec) (int, bool) {
	k := p.key(pos)
	best := -1
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, e := range p.cells[cell{k.x + dx, k.y + dy, k.z + dz}] {
					if best >= 0 && e.index >= best {
						continue
					}
					if !geom.Near(e.pos, pos, p.eps) {
						continue
					}
					if normal != nil && !geom.Near(e.normal, *normal, p.eps) {
						continue
					}
					best = e.index
				}
			}
		}
	}
	return best, best >= 0
}
