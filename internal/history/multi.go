package history

import (
	"context"
	"errors"

	"github.com/lox/holdem-arena/internal/session"
)

// Multi fans each hand out to every sink. All sinks see every record;
// errors are joined rather than short-circuiting.
func Multi(sinks ...session.HandRecorder) session.HandRecorder {
	return multiRecorder(sinks)
}

type multiRecorder []session.HandRecorder

func (m multiRecorder) RecordHand(ctx context.Context, rec session.HandRecord) error {
	var errs []error
	for _, sink := range m {
		if err := sink.RecordHand(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
