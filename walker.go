package mimekit

// typeOrder lists common, easily confused types that are tested ahead of
// their siblings, in this order. Several container signatures are supersets
// of others (office documents are valid ZIPs); probing the well-known types
// first keeps the walk from committing to an overly generic branch.
var typeOrder = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"application/zip",
	"application/x-msdos-executable",
	"application/pdf",
}

func isPriorityType(id string) bool {
	for _, p := range typeOrder {
		if p == id {
			return true
		}
	}
	return false
}

// orderedChildren returns the children of id with any priority types hoisted
// to the front (in typeOrder order); the rest keep their declaration order.
func (h *Hierarchy) orderedChildren(id string) []string {
	base := h.children[id]

	hoist := false
	for _, c := range base {
		if isPriorityType(c) {
			hoist = true
			break
		}
	}
	if !hoist {
		return base
	}

	out := make([]string, 0, len(base))
	for _, p := range typeOrder {
		for _, c := range base {
			if c == p {
				out = append(out, c)
			}
		}
	}
	for _, c := range base {
		if !isPriorityType(c) {
			out = append(out, c)
		}
	}
	return out
}

// walkFrom is the specialization walk: a greedy, non-backtracking,
// depth-first descent from n. At each level it tests the (priority-ordered)
// children and commits to the first match; if that child's own subtree
// yields a deeper match the deeper match wins, otherwise the child itself is
// the most specific confirmed type.
//
// Because the walk never backtracks across siblings, a candidate matching
// two sibling subtrees is only ever resolved inside the one tested first.
// That makes results depend on the priority list and on checker stringency
// for ambiguous formats; this trade-off is inherited deliberately.
func walkFrom(n *Node, match func(typeID string) bool) (string, bool) {
	for _, child := range n.h.orderedChildren(n.id) {
		if !match(child) {
			continue
		}
		if found, ok := walkFrom(n.h.nodes[child], match); ok {
			return found, true
		}
		return child, true
	}
	return "", false
}
