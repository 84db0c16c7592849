package stbridge

import (
	"fmt"
	"strings"
)

// Location paths for issues. The absolute path names every ancestor
// from the root; the id-anchored path starts at the nearest ancestor
// that carries an identifier, which keeps reports stable when unrelated
// parts of the document move.

func pathSegment(n *Node) string {
	if id := n.ID(); id != "" {
		return fmt.Sprintf("%s[@id='%s']", n.Tag, id)
	}
	return n.Tag
}

// absolutePath renders "/" + ancestors joined by "/".
func absolutePath(n *Node) string {
	var segments []string
	for cur := n; cur != nil; cur = cur.Parent {
		segments = append(segments, pathSegment(cur))
	}
	var b strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segments[i])
	}
	return b.String()
}

// idAnchoredPath renders "//" + the path from the nearest identified
// ancestor down to n. When no ancestor carries an id it falls back to
// the absolute path.
func idAnchoredPath(n *Node) string {
	var segments []string
	for cur := n; cur != nil; cur = cur.Parent {
		segments = append(segments, pathSegment(cur))
		if cur.ID() != "" {
			var b strings.Builder
			b.WriteString("/")
			for i := len(segments) - 1; i >= 0; i-- {
				b.WriteByte('/')
				b.WriteString(segments[i])
			}
			return b.String()
		}
	}
	return absolutePath(n)
}

// attributePath appends an attribute step to an element path.
func attributePath(path, attr string) string {
	return path + "/@" + attr
}
