package operations

import (
	"errors"
	"fmt"

	"github.com/rulego/batchops/host"
	"github.com/rulego/batchops/logger"
)

// Failure is one entity the host refused to change.
type Failure struct {
	Object string
	IDName string
	Err    error
}

func (f Failure) Error() string {
	if f.Object == "" {
		return fmt.Sprintf("%s: %v", f.IDName, f.Err)
	}
	return fmt.Sprintf("%s on %s: %v", f.IDName, f.Object, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Report summarizes a bulk operation. Failures do not stop the batch.
type Report struct {
	Changed  int
	Skipped  int
	Failures []Failure
}

func (r *Report) fail(obj host.Object, idname string, err error, log logger.Logger) {
	f := Failure{IDName: idname, Err: err}
	if obj != nil {
		f.Object = obj.Name()
	}
	log.Warn("%v", f)
	r.Failures = append(r.Failures, f)
}

// OK reports whether every entity was processed without failure.
func (r Report) OK() bool {
	return len(r.Failures) == 0
}

// Err joins the failures, or returns nil.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Merge adds other's counters and failures to r.
func (r *Report) Merge(other Report) {
	r.Changed += other.Changed
	r.Skipped += other.Skipped
	r.Failures = append(r.Failures, other.Failures...)
}

func (r Report) String() string {
	return fmt.Sprintf("changed=%d skipped=%d failed=%d", r.Changed, r.Skipped, len(r.Failures))
}
