package pool

import (
	"context"
	"fmt"
)

type ID string

const (
	RelationalPool ID = "relational"
	GraphPool      ID = "graph"
)

// Manager owns both store pools for the process lifetime.
type Manager struct {
	Relational *Relational
	Graph      *Graph
}

func NewManager(relational *Relational, graph *Graph) *Manager {
	return &Manager{Relational: relational, Graph: graph}
}

// Ping leases and returns one connection from the named pool.
func (m *Manager) Ping(ctx context.Context, id ID) error {
	switch id {
	case RelationalPool:
		lease, err := m.Relational.Acquire(ctx)
		if err != nil {
			return err
		}
		lease.Release()
		return nil
	case GraphPool:
		lease, err := m.Graph.Acquire(ctx)
		if err != nil {
			return err
		}
		lease.Release()
		return nil
	default:
		return fmt.Errorf("unknown pool %q", id)
	}
}

func (m *Manager) Close(ctx context.Context) error {
	m.Relational.Close()
	return m.Graph.Close(ctx)
}
