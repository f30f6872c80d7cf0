package registry

import "sync/atomic"

// firstId matches the starting value the identifier sequences have
// always used; ids below it never occur and zero is never a valid id.
const firstId = 1000

// idGenerator hands out monotonically increasing identifiers. Each
// Registry owns its own generators, so independent registries (and
// tests) never share counter state.
type idGenerator struct {
	next atomic.Int64
}

func newIdGenerator(start int) *idGenerator {
	g := &idGenerator{}
	g.next.Store(int64(start))
	return g
}

func (g *idGenerator) Next() int {
	return int(g.next.Add(1) - 1)
}
