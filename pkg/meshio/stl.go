package meshio

import (
	"github.com/chazu/carve/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// SaveSTL writes the triangles of all parts to one binary STL file.
func SaveSTL(path string, parts ...*kernel.Mesh) error {
	var tris []*sdf.Triangle3
	for _, part := range parts {
		at := func(i uint32) v3.Vec {
			return v3.Vec{
				X: float64(part.Vertices[3*i]),
				Y: float64(part.Vertices[3*i+1]),
				Z: float64(part.Vertices[3*i+2]),
			}
		}
		for i := 0; i+2 < len(part.Indices); i += 3 {
			tris = append(tris, &sdf.Triangle3{
				at(part.Indices[i]),
				at(part.Indices[i+1]),
				at(part.Indices[i+2]),
			})
		}
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return errors.Wrapf(err, "meshio: save %s", path)
	}
	Logger().Debug("meshio: saved stl", "path", path, "triangles", len(tris))
	return nil
}
