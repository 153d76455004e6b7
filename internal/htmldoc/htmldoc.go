// Package htmldoc évalue des requêtes structurelles simples sur un document
// HTML parsé. Les requêtes renvoient des séquences vides, jamais des erreurs:
// l'appelant décide si un champ absent est tolérable.
package htmldoc

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Node wraps a parsed element. The zero value means "no node": Attr and Text
// return "" and queries return nothing, so chained lookups stay safe.
type Node struct {
	n *html.Node
}

// Parse builds a document from HTML. The parser is lenient and never fails
// on malformed markup, only on reader errors.
func Parse(r io.Reader) (Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Node{}, err
	}
	return Node{n: root}, nil
}

func ParseString(s string) (Node, error) {
	return Parse(strings.NewReader(s))
}

func (nd Node) Ok() bool {
	return nd.n != nil
}

// Tag renvoie le nom d'élément en minuscules, "" pour le nœud zéro.
func (nd Node) Tag() string {
	if nd.n == nil || nd.n.Type != html.ElementNode {
		return ""
	}
	return nd.n.Data
}

// Find renvoie les descendants portant ce tag, en ordre document.
func (nd Node) Find(tag string) []Node {
	return nd.walk(func(n *html.Node) bool {
		return n.Data == tag
	})
}

// FindClass renvoie les descendants <tag class="..."> dont l'attribut class
// contient exactement class (séparé par des espaces).
func (nd Node) FindClass(tag, class string) []Node {
	return nd.walk(func(n *html.Node) bool {
		return n.Data == tag && hasClass(n, class)
	})
}

// FindAttr renvoie les descendants <tag key="val">.
func (nd Node) FindAttr(tag, key, val string) []Node {
	return nd.walk(func(n *html.Node) bool {
		return n.Data == tag && attrValue(n, key) == val
	})
}

// Elements renvoie les enfants directs de type élément.
func (nd Node) Elements() []Node {
	if nd.n == nil {
		return nil
	}
	var out []Node
	for c := nd.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, Node{n: c})
		}
	}
	return out
}

// FollowingSiblings renvoie les éléments frères situés après ce nœud,
// filtrés par tag ("" = tous).
func (nd Node) FollowingSiblings(tag string) []Node {
	if nd.n == nil {
		return nil
	}
	var out []Node
	for c := nd.n.NextSibling; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if tag != "" && c.Data != tag {
			continue
		}
		out = append(out, Node{n: c})
	}
	return out
}

// Attr renvoie la valeur d'attribut, "" si absent.
func (nd Node) Attr(key string) string {
	if nd.n == nil {
		return ""
	}
	return attrValue(nd.n, key)
}

// Text concatène les nœuds texte du sous-arbre, espaces normalisés.
func (nd Node) Text() string {
	if nd.n == nil {
		return ""
	}
	var b strings.Builder
	collectText(nd.n, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

// First renvoie le premier nœud d'une séquence, ou le nœud zéro.
func First(nodes []Node) Node {
	if len(nodes) == 0 {
		return Node{}
	}
	return nodes[0]
}

func (nd Node) walk(match func(*html.Node) bool) []Node {
	if nd.n == nil {
		return nil
	}
	var out []Node
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && match(c) {
				out = append(out, Node{n: c})
			}
			rec(c)
		}
	}
	rec(nd.n)
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attrValue(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
