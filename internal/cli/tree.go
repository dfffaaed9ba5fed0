package cli

import (
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type treeNode struct {
	name     string
	children map[string]*treeNode
	file     bool
}

func (n *treeNode) child(name string) *treeNode {
	if n.children == nil {
		n.children = make(map[string]*treeNode)
	}
	c, ok := n.children[name]
	if !ok {
		c = &treeNode{name: name}
		n.children[name] = c
	}
	return c
}

// printTree writes the files of fsys as an indented tree. When pattern is
// set, only files matching it (and their parent directories) are shown.
func printTree(w io.Writer, label string, fsys fs.FS, pattern string) error {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: invalid pattern %q", errUsage, pattern)
	}

	root := &treeNode{name: label}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		if d.IsDir() {
			if pattern == "" {
				root.walkTo(p)
			}
			return nil
		}
		if pattern != "" {
			ok, err := doublestar.Match(pattern, p)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		root.walkTo(p).file = true
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(w, root.name)
	root.print(w, "")
	return nil
}

func (n *treeNode) walkTo(p string) *treeNode {
	cur := n
	for part := range strings.SplitSeq(p, "/") {
		cur = cur.child(part)
	}
	return cur
}

func (n *treeNode) print(w io.Writer, indent string) {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	slices.Sort(names)
	for i, name := range names {
		c := n.children[name]
		branch, next := "├── ", "│   "
		if i == len(names)-1 {
			branch, next = "└── ", "    "
		}
		label := c.name
		if !c.file {
			label += "/"
		}
		fmt.Fprintf(w, "%s%s%s\n", indent, branch, label)
		c.print(w, indent+next)
	}
}
