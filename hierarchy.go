package mimekit

import (
	"log/slog"
	"strings"

	"github.com/dominikbraun/graph"
)

// Fallback type identifiers synthesized into every hierarchy. They exist
// whether or not a checker declares them, so every type is reachable from
// TypeAll and classification is total.
const (
	// TypeAll is the universal root; everything matches it.
	TypeAll = "all/all"
	// TypeAllFiles covers all regular files (not directories, sockets, ...).
	TypeAllFiles = "all/allfiles"
	// TypeTextPlain is the textual fallback.
	TypeTextPlain = "text/plain"
	// TypeOctetStream is the binary fallback.
	TypeOctetStream = "application/octet-stream"
)

// Node is a handle to one type in a Hierarchy. Handles are only valid for
// the hierarchy that produced them.
type Node struct {
	id string
	h  *Hierarchy
}

// ID returns the node's type identifier.
func (n *Node) ID() string { return n.id }

// Children returns the node's direct subclasses in declaration order.
func (n *Node) Children() []*Node {
	ids := n.h.children[n.id]
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = n.h.nodes[id]
	}
	return out
}

// Hierarchy is the frozen subclass graph assembled from every checker's
// supported types and subclass pairs. It is built once per detector and
// never mutated afterward, so all reads are lock-free.
type Hierarchy struct {
	// g stores one edge parent->child per declared subclass relation, so a
	// traversal of the exposed graph descends from the root toward leaves.
	g        graph.Graph[string, string]
	nodes    map[string]*Node
	order    []string            // node creation order
	children map[string][]string // parent -> children, edge insertion order
	parented map[string]bool
}

// buildHierarchy assembles the type hierarchy:
//
//  1. one node per unique supported type across all checkers,
//  2. one edge per unique subclass pair whose endpoints both exist
//     (dangling pairs are dropped),
//  3. the four fallback nodes, created if absent and linked into a spine
//     under all/all,
//  4. every remaining parentless node attached to a fallback parent chosen
//     by its top-level media segment.
func buildHierarchy(checkers []Checker, logger *slog.Logger) *Hierarchy {
	h := &Hierarchy{
		g:        graph.New(graph.StringHash, graph.Directed()),
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parented: make(map[string]bool),
	}

	for _, c := range checkers {
		for _, id := range c.SupportedTypes() {
			h.addNode(id)
		}
	}

	for _, c := range checkers {
		for _, p := range c.SubclassPairs() {
			if p.Child == p.Parent {
				continue
			}
			_, childOK := h.nodes[p.Child]
			_, parentOK := h.nodes[p.Parent]
			if !childOK || !parentOK {
				if logger != nil {
					logger.Debug("dropping dangling subclass pair",
						"child", p.Child, "parent", p.Parent)
				}
				continue
			}
			h.addEdge(p.Parent, p.Child)
		}
	}

	for _, id := range []string{TypeAll, TypeAllFiles, TypeTextPlain, TypeOctetStream} {
		h.addNode(id)
	}

	// The fallback spine collapses the forest into a single tree rooted at
	// all/all, which keeps root selection deterministic. Edges already
	// declared by a checker are not re-added.
	h.addEdge(TypeAll, TypeAllFiles)
	h.addEdge(TypeAllFiles, TypeTextPlain)
	h.addEdge(TypeAllFiles, TypeOctetStream)

	for _, id := range h.order {
		switch id {
		case TypeAll, TypeAllFiles, TypeTextPlain, TypeOctetStream:
			continue
		}
		if h.parented[id] {
			continue
		}
		toplevel, _, _ := strings.Cut(id, "/")
		switch toplevel {
		case "text":
			h.addEdge(TypeTextPlain, id)
		case "inode":
			h.addEdge(TypeAll, id)
		default:
			h.addEdge(TypeOctetStream, id)
		}
	}

	return h
}

func (h *Hierarchy) addNode(id string) {
	if _, ok := h.nodes[id]; ok {
		return
	}
	_ = h.g.AddVertex(id)
	h.nodes[id] = &Node{id: id, h: h}
	h.order = append(h.order, id)
}

// addEdge records parent -> child, silently skipping duplicates.
func (h *Hierarchy) addEdge(parent, child string) {
	if err := h.g.AddEdge(parent, child); err != nil {
		return
	}
	h.children[parent] = append(h.children[parent], child)
	h.parented[child] = true
}

// Root returns the universal root node (all/all).
func (h *Hierarchy) Root() *Node {
	return h.nodes[TypeAll]
}

// Lookup returns the node for a type identifier. Identifiers are compared
// exactly; no normalization is performed.
func (h *Hierarchy) Lookup(typeID string) (*Node, bool) {
	n, ok := h.nodes[typeID]
	return n, ok
}

// Types returns every type identifier in the hierarchy, in creation order.
func (h *Hierarchy) Types() []string {
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// Len returns the number of types in the hierarchy.
func (h *Hierarchy) Len() int { return len(h.order) }

// Graph exposes the underlying directed graph for custom traversal. Edges
// run parent to child. Callers must treat the graph as read-only.
func (h *Hierarchy) Graph() graph.Graph[string, string] {
	return h.g
}
