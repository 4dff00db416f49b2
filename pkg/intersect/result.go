// Package intersect implements the intersection predicates used by the
// CSG engine: ray-ray, segment-segment, triangle-ray, triangle-triangle
// and coplanar triangle overlap. All predicates take a tolerance eps,
// treated as a linear distance, and are pure functions.
//
// A predicate that finds its own inputs geometrically inconsistent panics
// with an *InvariantError. Callers that run a whole boolean operation
// recover exactly that type and turn it into an error.
package intersect

import "fmt"

// LineResult is the outcome of intersecting two lines or segments.
type LineResult int

const (
	LineNone      LineResult = iota // parallel apart, skew, or out of range
	LineCollinear                   // same supporting line (and overlapping, for segments)
	LinePoint                       // a single crossing point
)

func (r LineResult) String() string {
	switch r {
	case LineNone:
		return "none"
	case LineCollinear:
		return "collinear"
	case LinePoint:
		return "point"
	default:
		return fmt.Sprintf("LineResult(%d)", int(r))
	}
}

// TriangleResult tags the outcome of intersecting two triangles.
type TriangleResult int

const (
	None                TriangleResult = iota // no contact
	Point                                     // contact in a single point
	EdgeEdge                                  // segment along an edge of both triangles
	EdgeFace                                  // segment along an edge of one triangle
	CoplanarFaceFace                          // coplanar with overlapping areas
	NoncoplanarFaceFace                       // segment crossing both interiors
)

func (r TriangleResult) String() string {
	switch r {
	case None:
		return "none"
	case Point:
		return "point"
	case EdgeEdge:
		return "edge-edge"
	case EdgeFace:
		return "edge-face"
	case CoplanarFaceFace:
		return "coplanar-face-face"
	case NoncoplanarFaceFace:
		return "noncoplanar-face-face"
	default:
		return fmt.Sprintf("TriangleResult(%d)", int(r))
	}
}

// HasSegment reports whether the result carries an intersection segment.
// These results always cause a split; a Point result does only when the
// other triangle's plane separates the corners of the split one.
func (r TriangleResult) HasSegment() bool {
	return r == EdgeEdge || r == EdgeFace || r == NoncoplanarFaceFace
}

// InvariantError reports an internal-consistency violation detected by a
// predicate, such as a coplanar line crossing a triangle's boundary once.
// It indicates a robustness bug or an input outside the contract.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("intersect: %s: %s", e.Op, e.Detail)
}

func violation(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)})
}
