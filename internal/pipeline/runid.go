package pipeline

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// RunIDGenerator names one compilation run. Run IDs land in the
// document's volatile metadata and never participate in identity.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator produces time-sortable run IDs. UUIDv7 embeds the
// creation timestamp in the most significant bits, so runs sort
// chronologically in any artifact listing.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined run IDs, in order. Tests use it to
// produce stable volatile metadata.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined ID and panics when the sequence
// is exhausted, so a test consuming more runs than it planned fails loudly.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic(fmt.Sprintf("pipeline: all %d fixed run IDs consumed", len(g.ids)))
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
