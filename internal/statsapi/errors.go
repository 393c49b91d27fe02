package statsapi

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("statsapi: not found")

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("statsapi: status %d: %s", e.Status, e.Body)
}

// IsNotFound reports whether err means the entity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
