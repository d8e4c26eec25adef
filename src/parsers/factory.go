// backend/src/parsers/factory.go
package parsers

import (
	"fmt"

	"github.com/username/notafolio/backend/src/parsers/nota"
)

// GetParser returns the parser for a note source. B3 settlement notes are the
// only supported source today; the factory keeps the door open for
// broker-specific layouts that need their own implementation.
func GetParser(source string) (NoteParser, error) {
	switch source {
	case "", "b3":
		return nota.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
