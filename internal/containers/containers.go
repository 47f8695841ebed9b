package containers

import (
	"context"
)

// Class tags a container with the policy under which its identifier
// resolves. The store may restrict which identifiers are valid for a class.
type Class string

const (
	ClassGeneric Class = "generic"
	ClassAppData Class = "app-data"
)

// Container is an immutable handle to a named container. It references the
// container's directory but doesn't own it: dropping the handle leaves the
// directory intact.
type Container struct {
	Identifier string
	Class      Class
	Path       string
}

type Registry interface {
	// Resolve returns a handle to the container with the given identifier,
	// creating the container when createIfMissing is set. The bool result
	// reports whether the container existed before the call and must not be
	// read on error.
	Resolve(ctx context.Context, class Class, id string, createIfMissing bool) (Container, bool, error)
	Close() error
}
