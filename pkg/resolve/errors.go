package resolve

import (
	"errors"
	"fmt"
)

var errForeignAliases = errors.New("alias index was validated against a different vocabulary")

func errMissing(what string) error {
	return fmt.Errorf("missing %s", what)
}
