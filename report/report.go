// Package report renders an HTML page for inspecting a conversion: the texture atlas
// with every text rectangle outlined, and a table of the extracted texts with their
// world-space corners and atlas rectangles.
package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/ifcnotes/atlas"
	"github.com/tsawler/ifcnotes/mesh"
	"github.com/tsawler/ifcnotes/model"
)

// Data is the content of a report
type Data struct {
	Title    string
	Source   string // model file name
	Schema   string
	Mesh     *mesh.Mesh
	Atlas    *atlas.Atlas
	Warnings []string
}

const style = `body{font-family:sans-serif;margin:2em}
table{border-collapse:collapse}
td,th{border:1px solid #ccc;padding:2px 6px;font-size:13px;text-align:left}
tr.overflow{background:#fdd}
.atlas{position:relative;display:inline-block;border:1px solid #888}
.atlas div{position:absolute;outline:1px solid rgba(255,0,0,.5)}
.warn{color:#a00}`

// WriteHTML writes the report page
func WriteHTML(w io.Writer, d Data) error {
	if d.Mesh == nil || d.Atlas == nil {
		return fmt.Errorf("report needs a mesh and an atlas")
	}
	if len(d.Mesh.Faces) != len(d.Atlas.Entries) {
		return fmt.Errorf("atlas has %d entries for %d faces", len(d.Atlas.Entries), len(d.Mesh.Faces))
	}

	png, err := d.Atlas.PNG()
	if err != nil {
		return err
	}

	title := d.Title
	if title == "" {
		title = "Annotation texts"
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, "charset", "utf-8"))
	head.AppendChild(withText(element(atom.Title), title))
	head.AppendChild(withText(element(atom.Style), style))
	root.AppendChild(head)

	body := element(atom.Body)
	root.AppendChild(body)
	body.AppendChild(withText(element(atom.H1), title))

	summary := fmt.Sprintf("%d texts, atlas %dx%d px", len(d.Mesh.Faces), d.Atlas.Size(), d.Atlas.Size())
	if d.Source != "" {
		summary = d.Source + ": " + summary
	}
	if d.Schema != "" {
		summary += ", schema " + d.Schema
	}
	body.AppendChild(withText(element(atom.P), summary))

	if len(d.Warnings) > 0 {
		ul := element(atom.Ul, "class", "warn")
		for _, warn := range d.Warnings {
			ul.AppendChild(withText(element(atom.Li), warn))
		}
		body.AppendChild(ul)
	}

	body.AppendChild(atlasFigure(d.Atlas, png))
	body.AppendChild(textTable(d))

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// HTML returns the rendered report
func HTML(d Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// atlasFigure shows the atlas image with an outline over every entry
func atlasFigure(a *atlas.Atlas, png []byte) *html.Node {
	fig := element(atom.Div, "class", "atlas")
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	fig.AppendChild(element(atom.Img, "src", src, "alt", "texture atlas",
		"width", strconv.Itoa(a.Size()), "height", strconv.Itoa(a.Size())))

	for _, e := range a.Entries {
		box := element(atom.Div,
			"title", "#"+e.ID+" "+e.Text,
			"style", fmt.Sprintf("left:%dpx;top:%dpx;width:%dpx;height:%dpx", e.X, e.Y, e.Width, e.Height))
		fig.AppendChild(box)
	}
	return fig
}

var columns = []string{"#", "ID", "Literal", "p0", "p1", "p2", "p3", "Atlas rect", "UV"}

// textTable lists one row per text
func textTable(d Data) *html.Node {
	table := element(atom.Table)
	thead := element(atom.Thead)
	tr := element(atom.Tr)
	for _, c := range columns {
		tr.AppendChild(withText(element(atom.Th), c))
	}
	thead.AppendChild(tr)
	table.AppendChild(thead)

	overflow := make(map[int]bool, len(d.Atlas.Overflow))
	for _, i := range d.Atlas.Overflow {
		overflow[i] = true
	}

	size := d.Atlas.Size()
	tbody := element(atom.Tbody)
	for i, f := range d.Mesh.Faces {
		e := d.Atlas.Entries[i]
		row := element(atom.Tr)
		if overflow[i] {
			row.Attr = append(row.Attr, html.Attribute{Key: "class", Val: "overflow"})
		}

		uv := atlas.UVs(e, size, size)
		cells := []string{
			strconv.Itoa(i),
			f.ID,
			f.Text,
			point(f.Vertices[0]),
			point(f.Vertices[1]),
			point(f.Vertices[2]),
			point(f.Vertices[3]),
			fmt.Sprintf("%d,%d %dx%d", e.X, e.Y, e.Width, e.Height),
			fmt.Sprintf("(%.3f,%.3f)-(%.3f,%.3f)", uv[0].U, uv[0].V, uv[2].U, uv[2].V),
		}
		for _, c := range cells {
			row.AppendChild(withText(element(atom.Td), c))
		}
		tbody.AppendChild(row)
	}
	table.AppendChild(tbody)
	return table
}

func point(v model.Vec3) string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", v.X, v.Y, v.Z)
}

// element creates an element node with attributes given as key/value pairs
func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func withText(n *html.Node, text string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
