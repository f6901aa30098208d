package ir

import "fmt"

// IDGen allocates node and graph IDs for a single compilation. Each
// compilation owns its own generator; there is no process-wide counter, so
// independent compilations never contend and always start from the same
// sequence.
//
// IDGen is not safe for concurrent use. The pipeline is single-threaded per
// compilation unit, which is the only place IDs are minted.
type IDGen struct {
	next int64
}

// NewIDGen returns a generator whose first allocated counter value is zero.
func NewIDGen() *IDGen {
	return &IDGen{}
}

// NodeID allocates the next ID in the given kind's category.
func (g *IDGen) NodeID(k Kind) NodeID {
	n := g.next
	g.next++
	return NodeID(fmt.Sprintf("%s_%s", k.Category(), EncodeTrits(n)))
}

// GraphID allocates the next control-flow-graph ID.
func (g *IDGen) GraphID() GraphID {
	n := g.next
	g.next++
	return GraphID(fmt.Sprintf("cfg_%s", EncodeTrits(n)))
}

// BlockID allocates the next basic-block ID.
func (g *IDGen) BlockID() NodeID {
	n := g.next
	g.next++
	return NodeID(fmt.Sprintf("blk_%s", EncodeTrits(n)))
}
