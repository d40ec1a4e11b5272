// Package summary renders the markdown hearing summary for on-screen viewing.
package summary

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Section is one heading of the summary with the content that follows it.
type Section struct {
	Title    string     `json:"title"`
	Level    int        `json:"level"`
	Text     string     `json:"text,omitempty"`
	Items    []string   `json:"items,omitempty"`
	Children []*Section `json:"children,omitempty"`
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts the summary to HTML. Raw HTML in the input is not passed through.
func HTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}
	return buf.Bytes(), nil
}

// Outline builds the heading hierarchy of the summary. Content before the
// first heading lands in an untitled level-0 section.
func Outline(markdown string) []*Section {
	src := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(src))

	type stackEntry struct {
		sec   *Section
		level int
	}
	root := &Section{}
	stack := []stackEntry{{sec: root, level: 0}}

	var currentText bytes.Buffer
	flushText := func() {
		t := strings.TrimSpace(currentText.String())
		if t != "" {
			top := stack[len(stack)-1].sec
			if top.Text != "" {
				top.Text += "\n\n" + t
			} else {
				top.Text = t
			}
		}
		currentText.Reset()
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			flushText()
			sec := &Section{Title: extractText(node, src), Level: node.Level}
			for len(stack) > 1 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].sec
			parent.Children = append(parent.Children, sec)
			stack = append(stack, stackEntry{sec: sec, level: node.Level})

		case *ast.List:
			top := stack[len(stack)-1].sec
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				if t := extractText(item, src); t != "" {
					top.Items = append(top.Items, t)
				}
			}

		default:
			t := extractText(n, src)
			if t != "" {
				if currentText.Len() > 0 {
					currentText.WriteString("\n\n")
				}
				currentText.WriteString(t)
			}
		}
	}
	flushText()

	if root.Text == "" && len(root.Items) == 0 {
		return root.Children
	}
	preamble := &Section{Text: root.Text, Items: root.Items}
	return append([]*Section{preamble}, root.Children...)
}

// extractText gets the plain text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if s := extractText(c, src); s != "" {
			if buf.Len() > 0 && c.Type() == ast.TypeBlock {
				buf.WriteByte(' ')
			}
			buf.WriteString(s)
		}
	}
	return strings.TrimSpace(buf.String())
}
