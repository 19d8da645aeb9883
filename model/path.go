package model

import "strings"

// Path is an ordered, simple sequence of vertices produced by the
// PathCatalogue. Weight is the sum of edge weights along the path.
type Path struct {
	Nodes  []string
	Weight float64
}

// Links returns the ordered list of canonical link keys crossed by the
// path.
func (p Path) Links() []LinkKey {
	if len(p.Nodes) < 2 {
		return nil
	}
	links := make([]LinkKey, 0, len(p.Nodes)-1)
	for i := 0; i+1 < len(p.Nodes); i++ {
		links = append(links, CanonicalLinkKey(p.Nodes[i], p.Nodes[i+1]))
	}
	return links
}

// ContainsNode reports whether node appears anywhere on the path.
func (p Path) ContainsNode(node string) bool {
	for _, n := range p.Nodes {
		if n == node {
			return true
		}
	}
	return false
}

// ContainsLink reports whether the canonical link key appears on the path.
func (p Path) ContainsLink(link LinkKey) bool {
	for _, l := range p.Links() {
		if l == link {
			return true
		}
	}
	return false
}

// Key returns a deterministic string key for the path, used for
// tie-break comparisons and logging.
func (p Path) Key() string {
	return strings.Join(p.Nodes, ">")
}
