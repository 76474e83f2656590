package notification

import (
	"fmt"
	"sort"
	"strings"
)

// ErrDeliveryFailure lists the targets a notification could not reach, with the provider error of each.
type ErrDeliveryFailure struct {
	Failures map[string]error
}

func NewErrDeliveryFailure(failures map[string]error) *ErrDeliveryFailure {
	return &ErrDeliveryFailure{Failures: failures}
}

func (e *ErrDeliveryFailure) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	msgs := make([]string, 0, len(ids))
	for _, id := range ids {
		msgs = append(msgs, e.Failures[id].Error())
	}
	return fmt.Sprintf("delivery failed for %d target(s): %s", len(ids), strings.Join(msgs, "; "))
}

func (e *ErrDeliveryFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, err := range e.Failures {
		errs = append(errs, err)
	}
	return errs
}
