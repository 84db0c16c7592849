package stbridge

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentflare-ai/go-xmldom"
)

// Attr is a single attribute on a Node. Order of attributes is the
// document order they were parsed in.
type Attr struct {
	Name  string
	Value string
}

// Node is the generic attributed-tree representation of a parsed
// ST-Bridge document. Tag names are normalized at parse time (namespace
// prefix stripped), so lookups never have to retry with and without a
// prefix.
type Node struct {
	Tag      string
	Attrs    []Attr
	Children []*Node
	Parent   *Node
	Text     string
}

// Attr returns the value of the named attribute and whether it exists.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrValue returns the value of the named attribute, or "" when absent.
func (n *Node) AttrValue(name string) string {
	v, _ := n.Attr(name)
	return v
}

// ID returns the element's "id" attribute, or "" when it carries none.
func (n *Node) ID() string {
	return n.AttrValue("id")
}

// SetAttr sets or replaces an attribute, preserving its position when it
// already exists.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// RemoveAttr deletes an attribute, reporting whether it was present.
func (n *Node) RemoveAttr(name string) bool {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// FirstChild returns the first child with the given tag, or nil.
func (n *Node) FirstChild(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns all direct children with the given tag.
func (n *Node) ChildrenByTag(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// RemoveChild detaches the given child, reporting whether it was found.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return true
		}
	}
	return false
}

// Walk visits n and every descendant in document order.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// Clone returns a deep copy of the subtree rooted at n. The copy's
// Parent is nil; parent links inside the copy are rebuilt.
func (n *Node) Clone() *Node {
	cp := &Node{
		Tag:  n.Tag,
		Text: n.Text,
	}
	if len(n.Attrs) > 0 {
		cp.Attrs = make([]Attr, len(n.Attrs))
		copy(cp.Attrs, n.Attrs)
	}
	if len(n.Children) > 0 {
		cp.Children = make([]*Node, 0, len(n.Children))
		for _, c := range n.Children {
			cc := c.Clone()
			cc.Parent = cp
			cp.Children = append(cp.Children, cc)
		}
	}
	return cp
}

// Ref renders a short human-readable reference such as
// "StbColumn[@id='C1']" used in reports and repair logs.
func (n *Node) Ref() string {
	if id := n.ID(); id != "" {
		return fmt.Sprintf("%s[@id='%s']", n.Tag, id)
	}
	return n.Tag
}

// ParseDocument decodes an XML document and converts it into a Node
// tree. Tag and attribute names are normalized here, once, so the
// validator never deals with namespace prefixes.
func ParseDocument(r io.Reader) (*Node, error) {
	doc, err := xmldom.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML document: %w", err)
	}
	root := doc.DocumentElement()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return convertElement(root, nil), nil
}

func convertElement(elem xmldom.Element, parent *Node) *Node {
	n := &Node{
		Tag:    normalizeName(string(elem.LocalName())),
		Parent: parent,
	}

	attrs := elem.Attributes()
	for i := uint(0); i < attrs.Length(); i++ {
		attr := attrs.Item(i)
		if attr == nil {
			continue
		}
		name := string(attr.NodeName())
		if name == "xmlns" || strings.HasPrefix(name, "xmlns:") {
			continue
		}
		n.Attrs = append(n.Attrs, Attr{
			Name:  normalizeName(name),
			Value: string(attr.NodeValue()),
		})
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		n.Children = append(n.Children, convertElement(child, n))
	}

	if len(n.Children) == 0 {
		n.Text = strings.TrimSpace(string(elem.TextContent()))
	}

	return n
}

// normalizeName strips a namespace prefix from a tag or attribute name.
func normalizeName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
