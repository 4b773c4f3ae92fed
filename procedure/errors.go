package procedure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProcedureNotFound  = errors.New("procedure not found")
	ErrAmbiguousProcedure = errors.New("ambiguous procedure")
)

// LookupError carries the key that was searched and, when ambiguous, the stored keys it
// matched. SpecificNames is aligned with Matches and names overloads where known.
type LookupError struct {
	Key           Key
	Matches       []Key
	SpecificNames []string
}

func (e *LookupError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("procedure %s not found", e.Key)
	}
	names := make([]string, len(e.Matches))
	for i, m := range e.Matches {
		names[i] = m.String()
		if i < len(e.SpecificNames) && e.SpecificNames[i] != "" {
			names[i] += " (" + e.SpecificNames[i] + ")"
		}
	}
	return fmt.Sprintf("procedure %s is ambiguous: matches %s", e.Key, strings.Join(names, ", "))
}

func (e *LookupError) Unwrap() error {
	if len(e.Matches) == 0 {
		return ErrProcedureNotFound
	}
	return ErrAmbiguousProcedure
}
