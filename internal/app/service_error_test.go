package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAnnotateServiceErrorTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	err := annotateServiceError(ctx, "service.convert_date", context.DeadlineExceeded)
	var se *serviceContextError
	if !errors.As(err, &se) {
		t.Fatalf("expected serviceContextError, got %v", err)
	}
	if se.Kind != "timeout" || se.Deadline == nil {
		t.Fatalf("unexpected annotation: %+v", se)
	}
	if !strings.Contains(err.Error(), "service.convert_date timed out") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	meta := serviceErrorMeta(err)
	if meta["phase"] != "service.convert_date" || meta["kind"] != "timeout" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestAnnotateServiceErrorCanceled(t *testing.T) {
	err := annotateServiceError(context.Background(), "service.today", context.Canceled)
	var se *serviceContextError
	if !errors.As(err, &se) || se.Kind != "canceled" {
		t.Fatalf("expected canceled annotation, got %v", err)
	}
}

func TestAnnotateServiceErrorPassThrough(t *testing.T) {
	orig := errors.New("connection refused")
	if got := annotateServiceError(context.Background(), "service.today", orig); got != orig {
		t.Fatalf("plain errors must pass through, got %v", got)
	}
	if annotateServiceError(context.Background(), "service.today", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	if serviceErrorMeta(orig) != nil {
		t.Fatalf("non-annotated errors have no meta")
	}
}
