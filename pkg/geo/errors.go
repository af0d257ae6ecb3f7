package geo

import (
	"errors"
	"fmt"
)

// ErrInvalidRoute is returned when route geometry cannot be used as a path.
var ErrInvalidRoute = errors.New("invalid route geometry")

// UnsupportedSRIDError reports a spatial reference the diorama cannot project.
type UnsupportedSRIDError struct {
	SRID int
}

func (e *UnsupportedSRIDError) Error() string {
	return fmt.Sprintf("unsupported spatial reference %d (want %d or %d)", e.SRID, SRIDWGS84, SRIDWebMercator)
}
