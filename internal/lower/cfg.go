package lower

import "github.com/moonsmith/moonsmith/internal/ir"

// buildCFG partitions a function's top-level body statements into basic
// blocks and attaches the graph to the document. Partitioning is
// straight-line: a statement that branches, loops, or transfers control
// terminates its block, and the next statement starts a new one. A
// synthetic empty exit block closes every graph so entry and exit are
// always distinct when the body branches.
func (l *lowerer) buildCFG(fn *ir.Node) {
	body := l.doc.Node(fn.Body)

	g := &ir.Graph{Function: fn.ID}

	cur := ir.Block{ID: l.ids.BlockID()}
	g.Entry = cur.ID
	if body != nil {
		for _, sid := range body.Stmts {
			cur.Stmts = append(cur.Stmts, sid)
			if l.terminatesBlock(sid) {
				g.Blocks = append(g.Blocks, cur)
				cur = ir.Block{ID: l.ids.BlockID()}
			}
		}
	}
	g.Blocks = append(g.Blocks, cur)

	exit := ir.Block{ID: l.ids.BlockID()}
	g.Blocks = append(g.Blocks, exit)
	g.Exit = exit.ID

	l.doc.AttachGraph(l.ids.GraphID(), g)
}

func (l *lowerer) terminatesBlock(id ir.NodeID) bool {
	n := l.doc.Node(id)
	if n == nil {
		return false
	}
	switch n.Kind {
	case ir.KindIf, ir.KindSwitch, ir.KindTry,
		ir.KindWhile, ir.KindDoWhile, ir.KindFor, ir.KindForIn, ir.KindForOf,
		ir.KindReturn, ir.KindBreak, ir.KindContinue, ir.KindThrow:
		return true
	}
	return false
}
