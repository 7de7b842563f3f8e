package simple

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// Generator hands out sequential ids and references. Deterministic, for tests.
type Generator struct {
	mu      sync.Mutex
	counter int
}

func New() *Generator {
	//nolint:exhaustruct
	return &Generator{}
}

func (g *Generator) GetID(_ context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++

	return strconv.Itoa(g.counter), nil
}

func (g *Generator) GetReference(_ context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++

	return fmt.Sprintf("DT-%09d", g.counter), nil
}
