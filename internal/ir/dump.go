package ir

import (
	"fmt"
	"sort"
	"strings"
)

// DumpTree returns a human-readable indented tree view of the document,
// rooted at the module body. Traversal follows stored child ID lists, so
// the dump is deterministic.
func DumpTree(d *Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", d.Module.ID)
	for _, id := range d.Module.Body {
		dumpNode(&b, d, id, 1)
	}
	return b.String()
}

func dumpNode(b *strings.Builder, d *Document, id NodeID, depth int) {
	indent := strings.Repeat("  ", depth)
	if id == NilID {
		fmt.Fprintf(b, "%s<hole>\n", indent)
		return
	}
	n := d.Node(id)
	if n == nil {
		fmt.Fprintf(b, "%s%s <missing>\n", indent, id)
		return
	}

	label := string(n.Kind)
	switch {
	case n.Name != "":
		label += " " + n.Name
	case n.Op != "":
		label += " " + n.Op
	case n.Lit != nil:
		label += " " + literalLabel(n.Lit)
	}
	if n.DeclKind != "" {
		label += " [" + n.DeclKind + "]"
	}
	if n.Async {
		label += " [async]"
	}
	fmt.Fprintf(b, "%s%s (%s)\n", indent, label, id)

	for _, child := range childOrder(n) {
		dumpNode(b, d, child, depth+1)
	}
}

func literalLabel(l *Literal) string {
	switch l.Type {
	case "string":
		return fmt.Sprintf("%q", l.Str)
	case "number":
		if l.Raw != "" {
			return l.Raw
		}
		return fmt.Sprintf("%v", l.Num)
	case "boolean":
		return fmt.Sprintf("%v", l.Bool)
	default:
		return "null"
	}
}

// childOrder lists a node's children in their structural order. Single
// references come before lists, mirroring source order per kind closely
// enough for a debugging view.
func childOrder(n *Node) []NodeID {
	var out []NodeID
	add := func(id NodeID) {
		if id != NilID {
			out = append(out, id)
		}
	}
	switch n.Kind {
	case KindIf, KindConditional:
		add(n.Test)
		add(n.Then)
		add(n.Else)
	case KindFor:
		add(n.Init)
		add(n.Test)
		add(n.Update)
		add(n.Body)
	case KindVarDeclarator:
		add(n.Target)
		add(n.Init)
	case KindMember:
		add(n.Object)
		add(n.Property)
	case KindProperty:
		add(n.Key)
		add(n.Value)
	case KindTry:
		add(n.Body)
		add(n.Handler)
	case KindCatch:
		add(n.Param)
		add(n.Body)
	case KindArrayPattern, KindArrayLit:
		// Holes stay visible in the dump.
		return append(out, n.Elems...)
	default:
		add(n.Left)
		add(n.Right)
		add(n.Test)
		add(n.Callee)
		add(n.Arg)
	}
	out = append(out, n.Params...)
	out = append(out, n.Decls...)
	out = append(out, n.Props...)
	out = append(out, n.Args...)
	out = append(out, n.Cases...)
	out = append(out, n.Stmts...)
	if n.Kind != KindFor && n.Kind != KindTry && n.Kind != KindCatch {
		add(n.Body)
	}
	return out
}

// DumpGraphs returns a human-readable view of every control-flow graph in
// the document, ordered by graph ID.
func DumpGraphs(d *Document) string {
	ids := make([]string, 0, len(d.Graphs))
	for id := range d.Graphs {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		g := d.Graphs[GraphID(id)]
		fmt.Fprintf(&b, "graph %s (function %s)\n", id, g.Function)
		for _, blk := range g.Blocks {
			marker := ""
			if blk.ID == g.Entry {
				marker = " [entry]"
			}
			if blk.ID == g.Exit {
				marker += " [exit]"
			}
			fmt.Fprintf(&b, "  %s%s:\n", blk.ID, marker)
			for _, stmt := range blk.Stmts {
				fmt.Fprintf(&b, "    %s\n", stmt)
			}
		}
	}
	return b.String()
}
