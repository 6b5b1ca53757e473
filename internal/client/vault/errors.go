package vault

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrCancelled       = errors.New("cancelled")
	ErrNothingSelected = errors.New("no assets selected")
)

// PartialFailureError reports the items of a bulk operation that failed
// while the rest went through.
type PartialFailureError struct {
	Op     string
	Total  int
	Failed map[string]error
}

func (e *PartialFailureError) Error() string {
	ids := e.FailedIDs()
	return fmt.Sprintf("%s: %d of %d items failed (%s)", e.Op, len(ids), e.Total, strings.Join(ids, ", "))
}

func (e *PartialFailureError) FailedIDs() []string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
