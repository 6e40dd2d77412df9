// Package host defines the contract with the note host that stores
// rendered cards, plus an HTTP client implementing it.
package host

import "context"

// NodeRef is an opaque reference to a node owned by the host. Callers
// only ever hand it back to the interface that produced it.
type NodeRef struct {
	ID string
}

// NodeCreator is the narrow host surface the pipeline depends on: node
// creation plus the two calls used to establish a destination
// container. All mutation goes through CreateNode, one node per call.
type NodeCreator interface {
	// CreateNode creates a node holding markup text, under parent when
	// parent is non-nil.
	CreateNode(ctx context.Context, markup string, parent *NodeRef) (*NodeRef, error)

	// SetAsContainer marks an existing node as a grouping container.
	SetAsContainer(ctx context.Context, ref NodeRef) error

	// FindByName returns a node with the given name, or (nil, nil) when
	// the host has none.
	FindByName(ctx context.Context, name string) (*NodeRef, error)
}
