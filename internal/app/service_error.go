package app

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	ctxKindTimeout  = "timeout"
	ctxKindCanceled = "canceled"
)

// serviceContextError tags a context failure with the calendar-service
// phase that was in flight, so the user sees which call hit the --timeout
// budget rather than a bare "context deadline exceeded".
type serviceContextError struct {
	Phase    string
	Kind     string
	Deadline *time.Time
	Err      error
}

func (e *serviceContextError) Error() string {
	if e == nil {
		return "service error"
	}
	if e.Kind == ctxKindCanceled {
		return fmt.Sprintf("%s canceled: %v", e.Phase, e.Err)
	}
	if e.Deadline != nil {
		return fmt.Sprintf("%s timed out after deadline %s: %v", e.Phase, e.Deadline.Format(time.RFC3339), e.Err)
	}
	return fmt.Sprintf("%s timed out: %v", e.Phase, e.Err)
}

func (e *serviceContextError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// annotateServiceError wraps context timeouts and cancellations with the
// phase name. Every other error, including ServiceError payloads from the
// calendar service, passes through untouched.
func annotateServiceError(ctx context.Context, phase string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		sce := &serviceContextError{Phase: phase, Kind: ctxKindTimeout, Err: err}
		if deadline, ok := ctx.Deadline(); ok {
			deadline = deadline.UTC()
			sce.Deadline = &deadline
		}
		return sce
	case errors.Is(err, context.Canceled):
		return &serviceContextError{Phase: phase, Kind: ctxKindCanceled, Err: err}
	default:
		return err
	}
}

// serviceErrorMeta exposes the annotation as envelope meta for structured
// output modes. Nil for errors that were never annotated.
func serviceErrorMeta(err error) map[string]any {
	var sce *serviceContextError
	if !errors.As(err, &sce) || sce == nil {
		return nil
	}
	meta := map[string]any{
		"phase": sce.Phase,
		"kind":  sce.Kind,
	}
	if sce.Deadline != nil {
		meta["deadline"] = sce.Deadline.Format(time.RFC3339)
	}
	return meta
}
