package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // box, cylinder, sphere
	NodeTransform                 // translate and/or rotate one child
	NodeBoolean                   // union, difference, intersection
	NodePart                      // named output (defpart)
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeTransform:
		return "transform"
	case NodeBoolean:
		return "boolean"
	case NodePart:
		return "part"
	default:
		return "unknown"
	}
}

// NodeID is the hex SHA-256 content hash identifying a node.
type NodeID string

// NewNodeID hashes an arbitrary key into a NodeID.
func NewNodeID(key string) NodeID {
	sum := sha256.Sum256([]byte(key))
	return NodeID(hex.EncodeToString(sum[:]))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool { return id == "" }

// Short returns the first 8 characters of id, for messages.
func (id NodeID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

// Node is the fundamental element of the design graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// NewNode builds a node whose ID is the hash of its kind, name, data and
// children. Two nodes built from equal inputs have equal IDs.
func NewNode(kind NodeKind, name string, data NodeData, children ...NodeID) *Node {
	n := &Node{Kind: kind, Name: name, Data: data, Children: children}
	n.ID = n.hash()
	return n
}

func (n *Node) hash() NodeID {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%T\x00", n.Kind, n.Name, n.Data)
	// Node data are plain structs, which encode deterministically.
	b, err := json.Marshal(n.Data)
	if err != nil {
		panic(fmt.Sprintf("graph: hash %T: %v", n.Data, err))
	}
	h.Write(b)
	for _, c := range n.Children {
		fmt.Fprintf(h, "\x00%s", c)
	}
	return NodeID(hex.EncodeToString(h.Sum(nil)))
}
