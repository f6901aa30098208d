package ir

// NodeID names one IR node within a document. The format is
// "<category>_<digits>" where digits are balanced-ternary (see ternary.go).
// IDs are assigned once at creation and never reused.
type NodeID string

// NilID is the explicit "no node" slot. It appears only where a position is
// structurally meaningful but intentionally vacant: array-pattern holes,
// an if without an else, a for clause that was omitted in source, or a
// switch case's missing test (the default case). It never resolves to a
// node and never introduces a binding.
const NilID NodeID = ""

// GraphID names one control-flow graph within a document.
type GraphID string

// Position is a single source location.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Span is a half-open source range attached to nodes for diagnostics.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Literal carries the payload of a Literal node. Exactly one of the value
// fields is meaningful, selected by Type.
type Literal struct {
	Type string  `json:"type"` // "number" | "string" | "boolean" | "null"
	Num  float64 `json:"num,omitempty"`
	Str  string  `json:"str,omitempty"`
	Bool bool    `json:"bool,omitempty"`
	Raw  string  `json:"raw,omitempty"` // source text, preserved for exact re-emission of numbers
}

// Node is the discriminated union over all IR kinds. Kind selects which
// payload fields are meaningful; unused fields stay zero and are omitted
// from serialization.
//
// Child references are always NodeIDs into the owning document's flat
// table, never embedded nodes.
type Node struct {
	ID   NodeID `json:"id"`
	Kind Kind   `json:"kind"`
	Span *Span  `json:"span,omitempty"`

	// Scalar payloads.
	Op        string   `json:"op,omitempty"`        // binary/logical/unary/update/assignment operator
	Name      string   `json:"name,omitempty"`      // Identifier
	Lit       *Literal `json:"lit,omitempty"`       // Literal
	DeclKind  string   `json:"declKind,omitempty"`  // VariableDeclaration and each of its declarators
	Async     bool     `json:"async,omitempty"`     // function forms: body is a suspension-capable unit
	Prefix    bool     `json:"prefix,omitempty"`    // UpdateExpression
	Computed  bool     `json:"computed,omitempty"`  // MemberExpression, Property
	Shorthand bool     `json:"shorthand,omitempty"` // Property

	// Single child references.
	Left     NodeID `json:"left,omitempty"`     // binary/logical left, assignment target, for-in/of target, AssignmentPattern target
	Right    NodeID `json:"right,omitempty"`    // binary/logical right, assignment value, for-in/of iterable, AssignmentPattern default
	Test     NodeID `json:"test,omitempty"`     // if/while/do-while/for/conditional test, switch discriminant, case test
	Then     NodeID `json:"then,omitempty"`     // if consequent, conditional consequent
	Else     NodeID `json:"else,omitempty"`     // if alternate, conditional alternate
	Init     NodeID `json:"init,omitempty"`     // for init clause, declarator initializer
	Update   NodeID `json:"update,omitempty"`   // for update clause
	Body     NodeID `json:"body,omitempty"`     // function/loop/try body block, catch body
	Handler  NodeID `json:"handler,omitempty"`  // try's catch clause
	Param    NodeID `json:"param,omitempty"`    // catch clause parameter
	Target   NodeID `json:"target,omitempty"`   // declarator binding (identifier or pattern)
	Callee   NodeID `json:"callee,omitempty"`   // call/new callee
	Object   NodeID `json:"object,omitempty"`   // member object
	Property NodeID `json:"property,omitempty"` // member property
	Key      NodeID `json:"key,omitempty"`      // property key
	Value    NodeID `json:"value,omitempty"`    // property value
	Arg      NodeID `json:"arg,omitempty"`      // return/throw/unary/update/await/rest argument

	// Child lists. Order is load-bearing: every consumer traverses these
	// lists as stored, never table-iteration order.
	Stmts  []NodeID `json:"stmts,omitempty"`  // program/block/case statement list
	Params []NodeID `json:"params,omitempty"` // function parameters
	Args   []NodeID `json:"args,omitempty"`   // call/new arguments
	Decls  []NodeID `json:"decls,omitempty"`  // variable declaration declarators
	Elems  []NodeID `json:"elems,omitempty"`  // array literal/pattern elements; NilID marks a hole
	Props  []NodeID `json:"props,omitempty"`  // object literal/pattern properties
	Cases  []NodeID `json:"cases,omitempty"`  // switch cases

	// Metadata attached after creation.
	CFG GraphID `json:"cfg,omitempty"` // function forms: attached control-flow graph
}
