package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/noah-isme/getaroom/internal/timetable"
)

// ReadRows returns the flattened text of every body row of the first table
// in the document. The first row is a title row and is dropped.
func ReadRows(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse timetable document: %w", err)
	}

	table := findFirst(doc, atom.Table)
	if table == nil {
		return nil, fmt.Errorf("timetable document has no table")
	}
	body := findFirst(table, atom.Tbody)
	if body == nil {
		body = table
	}

	var rows []string
	for tr := body.FirstChild; tr != nil; tr = tr.NextSibling {
		if tr.Type != html.ElementNode || tr.DataAtom != atom.Tr {
			continue
		}
		rows = append(rows, timetable.Normalize(textOf(tr)))
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// textOf joins the text nodes under n with spaces so adjacent cells never
// run together.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
