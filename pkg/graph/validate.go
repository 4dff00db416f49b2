package graph

import (
	"fmt"

	"github.com/chazu/carve/pkg/csg"
)

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// Validate runs the structural and data checks on the design graph and
// returns every finding. A graph without error-severity findings can be
// tessellated. This function is read-only and never mutates the graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateArity(g)...)
	errs = append(errs, validateData(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	if g.Defaults.Tolerance <= 0 {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("tolerance %g is not positive", g.Defaults.Tolerance),
			Severity: SeverityError,
		})
	}
	return errs
}

// HasErrors reports whether errs contains an error-severity finding.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray node during traversal, we have found a cycle.
func validateDAG(g *DesignGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int) // default zero = white
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		// Walk Children edges.
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	// Start DFS from every node to catch disconnected components.
	for id := range g.Nodes {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}

	return errs
}

// validateReferences checks that every child ID points to a node that
// actually exists in g.Nodes.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateArity checks child counts and that each kind carries its own
// data type.
func validateArity(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	bad := func(n *Node, format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   n.ID,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}

	for _, node := range g.Nodes {
		n := len(node.Children)
		switch node.Kind {
		case NodePrimitive:
			switch node.Data.(type) {
			case BoxData, CylinderData, SphereData:
			default:
				bad(node, "primitive carries %T", node.Data)
			}
			if n != 0 {
				bad(node, "primitive has %d children, want 0", n)
			}
		case NodeTransform:
			if _, ok := node.Data.(TransformData); !ok {
				bad(node, "transform carries %T", node.Data)
			}
			if n != 1 {
				bad(node, "transform has %d children, want 1", n)
			}
		case NodeBoolean:
			if _, ok := node.Data.(BooleanData); !ok {
				bad(node, "boolean carries %T", node.Data)
			}
			if n < 2 {
				bad(node, "boolean has %d children, want at least 2", n)
			}
		case NodePart:
			if _, ok := node.Data.(PartData); !ok {
				bad(node, "part carries %T", node.Data)
			}
			if n != 1 {
				bad(node, "part has %d children, want 1", n)
			}
			if node.Name == "" {
				bad(node, "part has no name")
			}
		default:
			bad(node, "unknown node kind %d", int(node.Kind))
		}
	}

	return errs
}

// validateData checks primitive dimensions and transform payloads.
func validateData(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	report := func(n *Node, sev ValidationSeverity, format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   n.ID,
			Message:  fmt.Sprintf(format, args...),
			Severity: sev,
		})
	}

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case BoxData:
			if d.Size.X <= 0 || d.Size.Y <= 0 || d.Size.Z <= 0 {
				report(node, SeverityError, "box size %gx%gx%g is not positive", d.Size.X, d.Size.Y, d.Size.Z)
			}
		case CylinderData:
			if d.Height <= 0 || d.Radius <= 0 {
				report(node, SeverityError, "cylinder height %g radius %g is not positive", d.Height, d.Radius)
			}
			if d.Segments != 0 && d.Segments < 3 {
				report(node, SeverityWarning, "cylinder with %d segments is widened to 3", d.Segments)
			}
		case SphereData:
			if d.Radius <= 0 {
				report(node, SeverityError, "sphere radius %g is not positive", d.Radius)
			}
			if d.Cells < 0 {
				report(node, SeverityError, "sphere cells %d is negative", d.Cells)
			}
		case TransformData:
			if d.Translation == nil && d.Rotation == nil {
				report(node, SeverityWarning, "transform moves nothing")
			}
		case BooleanData:
			switch d.Op {
			case csg.OpSubtract, csg.OpUnion, csg.OpIntersect:
			default:
				report(node, SeverityError, "unknown boolean op %v", d.Op)
			}
		}
	}

	return errs
}

// validateNames checks that the NameIndex is injective (no two nodes share the
// same name) and that every entry in NameIndex points to an existing node.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	// Check that every NameIndex entry references an existing node.
	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	// Check injectivity: build a reverse map from NodeID to name, looking at
	// actual node Name fields. If two nodes share the same non-empty Name, error.
	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that every root ID references an existing node and
// warns about orphan nodes (nodes unreachable from any root).
func validateRoots(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	// Check that each root references an existing part.
	for _, rid := range g.Roots {
		n, ok := g.Nodes[rid]
		if !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
			continue
		}
		if n.Kind != NodePart {
			errs = append(errs, ValidationError{
				NodeID:   rid,
				Message:  fmt.Sprintf("root is a %s, not a part; it is exported without a name", n.Kind),
				Severity: SeverityWarning,
			})
		}
	}

	// Orphan detection: BFS from all roots through Children edges.
	if len(g.Nodes) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok {
			if !reachable[rid] {
				reachable[rid] = true
				queue = append(queue, rid)
			}
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}

		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	// Report any unreachable nodes as warnings.
	for id, node := range g.Nodes {
		if !reachable[id] {
			name := node.Name
			if name == "" {
				name = id.Short()
			}
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", name),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}
