package csg

// RemoveFaces drops faces according to the classification from
// ClassifyFaces and then the vertices no longer referenced.
//
// A face is a boundary face if it was flagged during splitting and all of
// its vertices are Boundary. It is inside if any vertex is Inside, or if
// all are Boundary and it is not a boundary face. It is outside if any
// vertex is Outside. A face is removed if it is a boundary face and
// boundary is set, if it is inside and inside is set, or if it is outside
// and inside is not set.
//
// A face that is both inside and outside returns ErrInsideAndOutside and
// a face using an unclassified vertex returns ErrUnclassifiedVertex. m is
// left unchanged in both cases.
func (m *Mesh) RemoveFaces(inside, boundary bool) error {
	remove := make([]bool, len(m.Faces))
	removed := 0
	for i, f := range m.Faces {
		var s [3]InsideStatus
		for k, idx := range f.V {
			s[k] = m.Status(idx)
			if s[k] == Unclassified {
				return faceError(ErrUnclassifiedVertex, i, f)
			}
		}

		allBoundary := s[0] == Boundary && s[1] == Boundary && s[2] == Boundary
		isBoundary := f.boundary && allBoundary
		isInside := s[0] == Inside || s[1] == Inside || s[2] == Inside || (allBoundary && !isBoundary)
		isOutside := s[0] == Outside || s[1] == Outside || s[2] == Outside
		if isInside && isOutside {
			return faceError(ErrInsideAndOutside, i, f)
		}

		if (isBoundary && boundary) || (isInside && inside) || (isOutside && !inside) {
			remove[i] = true
			removed++
		}
	}

	kept := m.Faces[:0]
	for i, f := range m.Faces {
		if !remove[i] {
			kept = append(kept, f)
		}
	}
	clear(m.Faces[len(kept):])
	m.Faces = kept
	m.DeleteUnusedVertices()

	Logger().Debug("csg: removed faces",
		"inside", inside,
		"boundary", boundary,
		"removed", removed,
		"kept", len(m.Faces))
	return nil
}
