// Package validate checks a lowered document before emission. Validation
// is read-only and collects every violation it finds rather than stopping
// at the first; the same document always yields the same result.
package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/moonsmith/moonsmith/internal/ir"
)

// Validation error codes (E200-E214)
const (
	// Node-level errors (E200-E209)
	ErrUnknownKind       = "E200" // kind outside the fixed vocabulary
	ErrMalformedID       = "E201" // node ID fails the ID grammar
	ErrIDMismatch        = "E202" // table key disagrees with the node's own ID
	ErrDanglingRef       = "E203" // child reference resolves to no node
	ErrInvalidOperator   = "E204" // operator outside its class allow-list
	ErrInvalidDeclKind   = "E205" // declaration kind outside var/let/const
	ErrDeclKindMismatch  = "E206" // declarator kind disagrees with its declaration
	ErrInvalidSpan       = "E207" // span fields non-finite or inverted
	ErrInvalidLiteral    = "E208" // literal payload malformed
	ErrStatementPosition = "E209" // non-statement kind in a statement list

	// Document-level errors (E210-E215)
	ErrModuleUnresolved = "E210" // module root or body statement missing
	ErrGraphNoFunction  = "E211" // graph's function reference missing
	ErrGraphNoEntry     = "E212" // entry or exit block absent from the graph
	ErrGraphStmtEscape  = "E213" // entry block statement outside the function body
	ErrGraphDetached    = "E214" // function's cfg tag names no graph
)

// ValidationError is a single coded violation. Field is a path into the
// document ("nodes.expr_1T.op", "graphs.cfg_10.entry").
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Result is the outcome of one validation pass.
type Result struct {
	OK     bool              `json:"ok"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Check validates a document. Errors are ordered by node ID, then by the
// order the checks run, so the result is stable across passes.
func Check(doc *ir.Document) Result {
	var errs []ValidationError

	ids := make([]ir.NodeID, 0, len(doc.Nodes))
	for id := range doc.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		errs = append(errs, checkNode(doc, id, doc.Nodes[id])...)
	}

	errs = append(errs, checkModule(doc)...)
	errs = append(errs, checkGraphs(doc)...)

	return Result{OK: len(errs) == 0, Errors: errs}
}

func checkNode(doc *ir.Document, key ir.NodeID, n *ir.Node) []ValidationError {
	var errs []ValidationError
	path := "nodes." + string(key)

	if !ir.IDPattern.MatchString(string(key)) {
		errs = append(errs, ValidationError{
			Field:   path + ".id",
			Message: fmt.Sprintf("malformed node ID %q", key),
			Code:    ErrMalformedID,
		})
	}
	if n.ID != key {
		errs = append(errs, ValidationError{
			Field:   path + ".id",
			Message: fmt.Sprintf("node ID %q stored under key %q", n.ID, key),
			Code:    ErrIDMismatch,
		})
	}
	if !ir.AllKinds[n.Kind] {
		errs = append(errs, ValidationError{
			Field:   path + ".kind",
			Message: fmt.Sprintf("unknown kind %q", n.Kind),
			Code:    ErrUnknownKind,
		})
		// Further checks assume a known kind.
		return errs
	}

	errs = append(errs, checkOperator(path, n)...)
	errs = append(errs, checkDecl(doc, path, n)...)
	errs = append(errs, checkSpan(path, n.Span)...)
	errs = append(errs, checkLiteral(path, n)...)
	errs = append(errs, checkRefs(doc, path, n)...)
	errs = append(errs, checkStmtLists(doc, path, n)...)

	return errs
}

// checkOperator enforces the per-class operator allow-lists.
func checkOperator(path string, n *ir.Node) []ValidationError {
	var class string
	var allowed map[string]bool
	switch n.Kind {
	case ir.KindBinary:
		class, allowed = "binary", ir.BinaryOps
	case ir.KindLogical:
		class, allowed = "logical", ir.LogicalOps
	case ir.KindUnary:
		class, allowed = "unary", ir.UnaryOps
	case ir.KindUpdate:
		class, allowed = "update", ir.UpdateOps
	case ir.KindAssign:
		class, allowed = "assignment", ir.AssignOps
	default:
		return nil
	}
	if allowed[n.Op] {
		return nil
	}
	return []ValidationError{{
		Field:   path + ".op",
		Message: fmt.Sprintf("invalid %s operator %q", class, n.Op),
		Code:    ErrInvalidOperator,
	}}
}

// checkDecl verifies the declaration kind tag and that every declarator
// under a declaration carries the same kind.
func checkDecl(doc *ir.Document, path string, n *ir.Node) []ValidationError {
	var errs []ValidationError
	switch n.Kind {
	case ir.KindVarDecl:
		if !ir.DeclKinds[n.DeclKind] {
			errs = append(errs, ValidationError{
				Field:   path + ".declKind",
				Message: fmt.Sprintf("invalid declaration kind %q", n.DeclKind),
				Code:    ErrInvalidDeclKind,
			})
		}
		for i, did := range n.Decls {
			d := doc.Node(did)
			if d == nil {
				continue // dangling refs reported separately
			}
			if d.DeclKind != n.DeclKind {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.decls[%d]", path, i),
					Message: fmt.Sprintf("declarator kind %q under %q declaration", d.DeclKind, n.DeclKind),
					Code:    ErrDeclKindMismatch,
				})
			}
		}
	case ir.KindVarDeclarator:
		if !ir.DeclKinds[n.DeclKind] {
			errs = append(errs, ValidationError{
				Field:   path + ".declKind",
				Message: fmt.Sprintf("invalid declaration kind %q", n.DeclKind),
				Code:    ErrInvalidDeclKind,
			})
		}
	}
	return errs
}

func checkSpan(path string, s *ir.Span) []ValidationError {
	if s == nil {
		return nil
	}
	var errs []ValidationError
	bad := func(field, msg string) {
		errs = append(errs, ValidationError{
			Field:   path + ".span." + field,
			Message: msg,
			Code:    ErrInvalidSpan,
		})
	}
	for _, p := range []struct {
		name string
		pos  ir.Position
	}{{"start", s.Start}, {"end", s.End}} {
		if p.pos.Line < 1 {
			bad(p.name+".line", fmt.Sprintf("line %d is not positive", p.pos.Line))
		}
		if p.pos.Column < 1 {
			bad(p.name+".column", fmt.Sprintf("column %d is not positive", p.pos.Column))
		}
		if p.pos.Offset < 0 {
			bad(p.name+".offset", fmt.Sprintf("offset %d is negative", p.pos.Offset))
		}
	}
	if s.End.Offset < s.Start.Offset {
		bad("end.offset", fmt.Sprintf("span ends (%d) before it starts (%d)", s.End.Offset, s.Start.Offset))
	}
	return errs
}

func checkLiteral(path string, n *ir.Node) []ValidationError {
	if n.Kind != ir.KindLiteral {
		return nil
	}
	if n.Lit == nil {
		return []ValidationError{{
			Field:   path + ".lit",
			Message: "literal node without a payload",
			Code:    ErrInvalidLiteral,
		}}
	}
	var errs []ValidationError
	switch n.Lit.Type {
	case "number":
		if math.IsNaN(n.Lit.Num) || math.IsInf(n.Lit.Num, 0) {
			errs = append(errs, ValidationError{
				Field:   path + ".lit.num",
				Message: "number literal is not finite",
				Code:    ErrInvalidLiteral,
			})
		}
	case "string", "boolean", "null":
	default:
		errs = append(errs, ValidationError{
			Field:   path + ".lit.type",
			Message: fmt.Sprintf("unknown literal type %q", n.Lit.Type),
			Code:    ErrInvalidLiteral,
		})
	}
	return errs
}

// refFields pairs every single-child slot with its JSON name, in struct
// order so reports come out stable.
func refFields(n *ir.Node) []struct {
	name string
	id   ir.NodeID
} {
	return []struct {
		name string
		id   ir.NodeID
	}{
		{"left", n.Left}, {"right", n.Right}, {"test", n.Test},
		{"then", n.Then}, {"else", n.Else}, {"init", n.Init},
		{"update", n.Update}, {"body", n.Body}, {"handler", n.Handler},
		{"param", n.Param}, {"target", n.Target}, {"callee", n.Callee},
		{"object", n.Object}, {"property", n.Property}, {"key", n.Key},
		{"value", n.Value}, {"arg", n.Arg},
	}
}

func listFields(n *ir.Node) []struct {
	name string
	ids  []ir.NodeID
} {
	return []struct {
		name string
		ids  []ir.NodeID
	}{
		{"stmts", n.Stmts}, {"params", n.Params}, {"args", n.Args},
		{"decls", n.Decls}, {"elems", n.Elems}, {"props", n.Props},
		{"cases", n.Cases},
	}
}

func checkRefs(doc *ir.Document, path string, n *ir.Node) []ValidationError {
	var errs []ValidationError
	dangling := func(field string, id ir.NodeID) {
		errs = append(errs, ValidationError{
			Field:   path + "." + field,
			Message: fmt.Sprintf("reference %q resolves to no node", id),
			Code:    ErrDanglingRef,
		})
	}
	for _, f := range refFields(n) {
		if f.id != ir.NilID && doc.Node(f.id) == nil {
			dangling(f.name, f.id)
		}
	}
	for _, f := range listFields(n) {
		for i, id := range f.ids {
			// NilID in a list is a deliberate hole, not a reference.
			if id != ir.NilID && doc.Node(id) == nil {
				dangling(fmt.Sprintf("%s[%d]", f.name, i), id)
			}
		}
	}
	return errs
}

// checkStmtLists rejects expression and pattern kinds sitting directly in
// a statement position.
func checkStmtLists(doc *ir.Document, path string, n *ir.Node) []ValidationError {
	switch n.Kind {
	case ir.KindProgram, ir.KindBlock, ir.KindSwitchCase:
	default:
		return nil
	}
	var errs []ValidationError
	for i, sid := range n.Stmts {
		s := doc.Node(sid)
		if s == nil {
			continue
		}
		if !s.Kind.IsStatement() {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.stmts[%d]", path, i),
				Message: fmt.Sprintf("%s in statement position", s.Kind),
				Code:    ErrStatementPosition,
			})
		}
	}
	return errs
}

func checkModule(doc *ir.Document) []ValidationError {
	var errs []ValidationError
	root := doc.Node(doc.Module.ID)
	if root == nil {
		errs = append(errs, ValidationError{
			Field:   "module.id",
			Message: fmt.Sprintf("module root %q resolves to no node", doc.Module.ID),
			Code:    ErrModuleUnresolved,
		})
	} else if root.Kind != ir.KindProgram {
		errs = append(errs, ValidationError{
			Field:   "module.id",
			Message: fmt.Sprintf("module root is %s, want %s", root.Kind, ir.KindProgram),
			Code:    ErrModuleUnresolved,
		})
	}
	for i, sid := range doc.Module.Body {
		if doc.Node(sid) == nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("module.body[%d]", i),
				Message: fmt.Sprintf("body statement %q resolves to no node", sid),
				Code:    ErrModuleUnresolved,
			})
		}
	}
	return errs
}

func checkGraphs(doc *ir.Document) []ValidationError {
	var errs []ValidationError

	gids := make([]ir.GraphID, 0, len(doc.Graphs))
	for id := range doc.Graphs {
		gids = append(gids, id)
	}
	sort.Slice(gids, func(i, j int) bool { return gids[i] < gids[j] })

	for _, gid := range gids {
		g := doc.Graphs[gid]
		path := "graphs." + string(gid)

		fn := doc.Node(g.Function)
		if fn == nil {
			errs = append(errs, ValidationError{
				Field:   path + ".function",
				Message: fmt.Sprintf("function %q resolves to no node", g.Function),
				Code:    ErrGraphNoFunction,
			})
		} else if fn.CFG != gid {
			errs = append(errs, ValidationError{
				Field:   path + ".function",
				Message: fmt.Sprintf("function %q is tagged with graph %q, not %q", g.Function, fn.CFG, gid),
				Code:    ErrGraphDetached,
			})
		}

		blocks := make(map[ir.NodeID]ir.Block, len(g.Blocks))
		for _, b := range g.Blocks {
			blocks[b.ID] = b
		}
		entry, ok := blocks[g.Entry]
		if !ok {
			errs = append(errs, ValidationError{
				Field:   path + ".entry",
				Message: fmt.Sprintf("entry block %q absent from the graph", g.Entry),
				Code:    ErrGraphNoEntry,
			})
		}
		if _, ok := blocks[g.Exit]; !ok {
			errs = append(errs, ValidationError{
				Field:   path + ".exit",
				Message: fmt.Sprintf("exit block %q absent from the graph", g.Exit),
				Code:    ErrGraphNoEntry,
			})
		}

		// Entry statements must come from the function's own body.
		if fn != nil && ok {
			body := doc.Node(fn.Body)
			inBody := make(map[ir.NodeID]bool)
			if body != nil {
				for _, sid := range body.Stmts {
					inBody[sid] = true
				}
			}
			for i, sid := range entry.Stmts {
				if !inBody[sid] {
					errs = append(errs, ValidationError{
						Field:   fmt.Sprintf("%s.blocks[%s].stmts[%d]", path, g.Entry, i),
						Message: fmt.Sprintf("statement %q is not in the function body", sid),
						Code:    ErrGraphStmtEscape,
					})
				}
			}
		}
	}
	return errs
}
