package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation references an unknown entity.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IsNotFound reports whether err wraps an ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

// ErrPlotResize is returned when an update tries to change a plot's shape or owner.
var ErrPlotResize = errors.New("plot rows, columns and graveyard cannot change after creation")
