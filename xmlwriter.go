package stbridge

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// WriteXML serializes a Node tree back to indented XML. Used to emit
// repaired documents; round-tripping comments or the original namespace
// prefixes is not a goal.
func WriteXML(w io.Writer, root *Node) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return writeNode(w, root, 0)
}

func writeNode(w io.Writer, n *Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	if _, err := fmt.Fprintf(w, "%s<%s", indent, n.Tag); err != nil {
		return err
	}
	for _, attr := range n.Attrs {
		if _, err := fmt.Fprintf(w, " %s=\"%s\"", attr.Name, escapeXML(attr.Value)); err != nil {
			return err
		}
	}

	if len(n.Children) == 0 && n.Text == "" {
		_, err := io.WriteString(w, "/>\n")
		return err
	}

	if len(n.Children) == 0 {
		_, err := fmt.Fprintf(w, ">%s</%s>\n", escapeXML(n.Text), n.Tag)
		return err
	}

	if _, err := io.WriteString(w, ">\n"); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := writeNode(w, c, depth+1); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s</%s>\n", indent, n.Tag)
	return err
}

func escapeXML(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
