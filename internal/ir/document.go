package ir

// SchemaVersion is the current IR document schema version. Bump when the
// node model or document shape changes incompatibly.
const SchemaVersion = "1"

// Document is the stable artifact boundary between the lowerer and every
// downstream consumer (validator, emitter, alternative backends). The flat
// Nodes table is the sole owner of every node.
type Document struct {
	SchemaVersion string             `json:"schemaVersion"`
	Module        ModuleInfo         `json:"module"`
	Nodes         map[NodeID]*Node   `json:"nodes"`
	Graphs        map[GraphID]*Graph `json:"controlFlowGraphs,omitempty"`
}

// ModuleInfo describes the compiled module: its root node, its top-level
// statement order, and compilation metadata.
type ModuleInfo struct {
	ID       NodeID   `json:"id"`
	Body     []NodeID `json:"body"`
	Metadata Metadata `json:"metadata"`
}

// Metadata records provenance for a compiled document. The Volatile block
// changes between otherwise identical runs and must be stripped before any
// determinism comparison.
type Metadata struct {
	SourcePath string            `json:"sourcePath,omitempty"`
	SourceHash string            `json:"sourceHash,omitempty"`
	Toolchain  map[string]string `json:"toolchain,omitempty"`

	// Functions carries caller-supplied per-function annotations, keyed
	// by function name. The compiler records them verbatim.
	Functions map[string]map[string]string `json:"functions,omitempty"`

	Volatile *Volatile `json:"volatile,omitempty"`
}

// Volatile holds per-run metadata excluded from document identity.
type Volatile struct {
	RunID   string           `json:"runId,omitempty"`
	Timings map[string]int64 `json:"timings,omitempty"` // stage name -> nanoseconds
}

// Graph is a per-function control-flow graph: an ordered block list plus
// designated entry and exit blocks.
type Graph struct {
	Function NodeID  `json:"function"`
	Blocks   []Block `json:"blocks"`
	Entry    NodeID  `json:"entry"`
	Exit     NodeID  `json:"exit"`
}

// Block is one basic block: an ordered list of statement IDs.
type Block struct {
	ID    NodeID   `json:"id"`
	Stmts []NodeID `json:"stmts,omitempty"`
}

// NewDocument returns an empty document at the current schema version.
func NewDocument() *Document {
	return &Document{
		SchemaVersion: SchemaVersion,
		Nodes:         make(map[NodeID]*Node),
	}
}

// Add registers a node in the flat table and returns its ID.
func (d *Document) Add(n *Node) NodeID {
	d.Nodes[n.ID] = n
	return n.ID
}

// Node returns the node for id, or nil when absent or when id is NilID.
func (d *Document) Node(id NodeID) *Node {
	if id == NilID {
		return nil
	}
	return d.Nodes[id]
}

// AttachGraph records a control-flow graph and links it from its function
// node. Attaching metadata is the only mutation permitted after lowering.
func (d *Document) AttachGraph(id GraphID, g *Graph) {
	if d.Graphs == nil {
		d.Graphs = make(map[GraphID]*Graph)
	}
	d.Graphs[id] = g
	if fn := d.Node(g.Function); fn != nil {
		fn.CFG = id
	}
}

// StripVolatile removes per-run metadata in place and returns the document.
// Equality and determinism comparisons operate on the stripped form.
func (d *Document) StripVolatile() *Document {
	d.Module.Metadata.Volatile = nil
	return d
}
