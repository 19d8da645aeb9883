package model

// Edge is an undirected link between two node ids, carrying the
// physical length used as Dijkstra/Yen edge weight and the number of
// contiguous spectrum slots available on the link.
type Edge struct {
	A, B   string
	Weight float64
	Slots  int
}

// Other returns the endpoint of the edge that is not node.
func (e Edge) Other(node string) string {
	if e.A == node {
		return e.B
	}
	return e.A
}

// Has reports whether node is one of the edge's endpoints.
func (e Edge) Has(node string) bool {
	return e.A == node || e.B == node
}

// LinkKey is the canonical, order-independent identifier for a link,
// used as a map key for the spectrum grid and failure sets.
type LinkKey struct {
	A, B string
}

// CanonicalLinkKey returns a LinkKey with endpoints sorted so that the
// same link always maps to the same key regardless of traversal order.
func CanonicalLinkKey(a, b string) LinkKey {
	if a > b {
		a, b = b, a
	}
	return LinkKey{A: a, B: b}
}
