package lower

import (
	"fmt"

	"github.com/moonsmith/moonsmith/internal/ast"
	"github.com/moonsmith/moonsmith/internal/ir"
)

// binding lowers a declarator target. kind is the declaration kind the
// leaves register under. Patterns are kept structural: the emitter, not
// the lowerer, decides how slots are extracted.
func (l *lowerer) binding(target ast.Expr, kind string) (ir.NodeID, error) {
	switch x := target.(type) {
	case *ast.Ident:
		n := l.newNode(ir.KindIdentifier, x.Loc)
		n.Name = x.Name
		if err := l.register(x.Name, kind, x.Loc); err != nil {
			return "", err
		}
		return n.ID, nil

	case *ast.ArrayPattern:
		n := l.newNode(ir.KindArrayPattern, x.Loc)
		for i, elem := range x.Elems {
			if elem == nil {
				// A hole skips the source slot and binds nothing.
				n.Elems = append(n.Elems, ir.NilID)
				continue
			}
			if rest, ok := elem.(*ast.RestElement); ok {
				if i != len(x.Elems)-1 {
					return "", l.unsupported("rest element before the end of an array pattern", rest.Loc)
				}
				id, err := l.restElement(rest, kind)
				if err != nil {
					return "", err
				}
				n.Elems = append(n.Elems, id)
				continue
			}
			id, err := l.binding(elem, kind)
			if err != nil {
				return "", err
			}
			n.Elems = append(n.Elems, id)
		}
		return n.ID, nil

	case *ast.ObjectPattern:
		n := l.newNode(ir.KindObjectPattern, x.Loc)
		for _, prop := range x.Props {
			if _, ok := prop.Value.(*ast.RestElement); ok {
				return "", l.unsupported("rest property in an object pattern", prop.Loc)
			}
			id, err := l.property(prop, kind)
			if err != nil {
				return "", err
			}
			n.Props = append(n.Props, id)
		}
		return n.ID, nil

	case *ast.AssignPattern:
		n := l.newNode(ir.KindAssignPattern, x.Loc)
		var err error
		if n.Left, err = l.binding(x.Target, kind); err != nil {
			return "", err
		}
		// The default is a plain expression; it only runs when the
		// source slot is nil at extraction time.
		if n.Right, err = l.expr(x.Default); err != nil {
			return "", err
		}
		return n.ID, nil

	case *ast.RestElement:
		return "", l.unsupported("rest element outside an array pattern", x.Loc)

	default:
		return "", l.unsupported(fmt.Sprintf("%T in binding position", target), target.Span())
	}
}

func (l *lowerer) restElement(rest *ast.RestElement, kind string) (ir.NodeID, error) {
	if _, ok := rest.Arg.(*ast.Ident); !ok {
		return "", l.unsupported("non-identifier rest target", rest.Loc)
	}
	n := l.newNode(ir.KindRestElement, rest.Loc)
	var err error
	if n.Arg, err = l.binding(rest.Arg, kind); err != nil {
		return "", err
	}
	return n.ID, nil
}

// property lowers one object entry. With an empty kind it sits in a
// literal and the value is an expression; otherwise it sits in a pattern
// and the value is a nested binding.
func (l *lowerer) property(prop *ast.Property, kind string) (ir.NodeID, error) {
	n := l.newNode(ir.KindProperty, prop.Loc)
	n.Computed = prop.Computed
	n.Shorthand = prop.Shorthand

	var err error
	if n.Key, err = l.expr(prop.Key); err != nil {
		return "", err
	}
	if kind == "" {
		n.Value, err = l.expr(prop.Value)
	} else {
		n.Value, err = l.binding(prop.Value, kind)
	}
	if err != nil {
		return "", err
	}
	return n.ID, nil
}
