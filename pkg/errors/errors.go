// Package errors provides the structured error and warning types used across
// the evaluation harness. Error types carry the context needed to diagnose a
// contract violation, attach stack traces via cockroachdb/errors, and
// marshal themselves as structured zerolog fields.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("evalgo-warning: %v\n", w)
	}
	// zerolog sink, set lazily to avoid a circular import with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the library-wide warning handler. Warnings such
// as UndefinedMetricWarning are advisory and never abort an operation; the
// handler controls where they go.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc routes warnings into a zerolog-backed logger.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning through the zerolog sink when one is configured,
// falling back to the plain handler otherwise.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// UndefinedMetricWarning is emitted when a metric is ill-defined for the
// given inputs and a conventional value is substituted, e.g. precision with
// no predicted positives (reported as 0) or R² with zero total variance
// (reported as NaN).
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // value substituted under this condition
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject adds the warning's fields to a zerolog event.
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning creates a new UndefinedMetricWarning.
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ConvergenceWarning is emitted when an iterative optimizer stops at its
// iteration budget before reaching its tolerance.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iter or adjusting parameters.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds the warning's fields to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a new ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// NotFittedError reports Predict/Score being called on an estimator whose
// Fit has not completed.
type NotFittedError struct {
	EstimatorName string
	Method        string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("evalgo: %s: this estimator is not fitted yet. Call Fit() before using %s()", e.EstimatorName, e.Method)
}

// MarshalZerologObject adds the error's fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("estimator_name", e.EstimatorName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace attached.
func NewNotFittedError(estimatorName, method string) error {
	err := &NotFittedError{EstimatorName: estimatorName, Method: method}
	return errors.WithStack(err)
}

// UnfittedTransformError reports Transform/InverseTransform being called on
// a transformer whose parameters have not been fitted. It is the transformer
// counterpart of NotFittedError.
type UnfittedTransformError struct {
	TransformName string
	Method        string
}

func (e *UnfittedTransformError) Error() string {
	return fmt.Sprintf("evalgo: %s: this transform is not fitted yet. Call Fit() before using %s()", e.TransformName, e.Method)
}

// MarshalZerologObject adds the error's fields to a zerolog event.
func (e *UnfittedTransformError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("transform_name", e.TransformName).
		Str("method", e.Method).
		Str("type", "UnfittedTransformError")
}

// NewUnfittedTransformError creates an UnfittedTransformError with a stack
// trace attached.
func NewUnfittedTransformError(transformName, method string) error {
	err := &UnfittedTransformError{TransformName: transformName, Method: method}
	return errors.WithStack(err)
}

// InvalidFractionError reports a held-out fraction outside the open
// interval (0, 1).
type InvalidFractionError struct {
	Op       string
	Fraction float64
}

func (e *InvalidFractionError) Error() string {
	return fmt.Sprintf("evalgo: %s: test fraction must be in (0, 1), got %g", e.Op, e.Fraction)
}

// MarshalZerologObject adds the error's fields to a zerolog event.
func (e *InvalidFractionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Float64("fraction", e.Fraction).
		Str("type", "InvalidFractionError")
}

// NewInvalidFractionError creates an InvalidFractionError with a stack trace
// attached.
func NewInvalidFractionError(op string, fraction float64) error {
	err := &InvalidFractionError{Op: op, Fraction: fraction}
	return errors.WithStack(err)
}

// EmptyDatasetError reports an operation applied to a dataset with zero
// records.
type EmptyDatasetError struct {
	Op string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("evalgo: %s: dataset has no records", e.Op)
}

// MarshalZerologObject adds the error's fields to a zerolog event.
func (e *EmptyDatasetError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("type", "EmptyDatasetError")
}

// NewEmptyDatasetError creates an EmptyDatasetError with a stack trace
// attached.
func NewEmptyDatasetError(op string) error {
	err := &EmptyDatasetError{Op: op}
	return errors.WithStack(err)
}

// StratificationError reports a stratified split requested on a label class
// too small to appear in both partitions.
type StratificationError struct {
	Op    string
	Label float64
	Count int
}

func (e *StratificationError) Error() string {
	return fmt.Sprintf("evalgo: %s: class %g has only %d member(s); stratification needs at least 2 per class", e.Op, e.Label, e.Count)
}

// MarshalZerologObject adds the error's fields to a zerolog event.
func (e *StratificationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Float64("label", e.Label).
		Int("count", e.Count).
		Str("type", "StratificationError")
}

// NewStratificationError creates a StratificationError with a stack trace
// attached.
func NewStratificationError(op string, label float64, count int) error {
	err := &StratificationError{Op: op, Label: label, Count: count}
	return errors.WithStack(err)
}

// LengthMismatchError reports parallel sequences of unequal length, such as
// true and predicted label vectors handed to a metric.
type LengthMismatchError struct {
	Op   string
	Want int
	Got  int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("evalgo: %s: length mismatch. Expected %d, got %d", e.Op, e.Want, e.Got)
}

// MarshalZerologObject adds the error's fields to a zerolog event.
func (e *LengthMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Want).
		Int("got", e.Got).
		Str("type", "LengthMismatchError")
}

// NewLengthMismatchError creates a LengthMismatchError with a stack trace
// attached.
func NewLengthMismatchError(op string, want, got int) error {
	err := &LengthMismatchError{Op: op, Want: want, Got: got}
	return errors.WithStack(err)
}

// EmptyConfigSpaceError reports a hyperparameter search whose configuration
// space generated no candidates.
type EmptyConfigSpaceError struct {
	Search string
}

func (e *EmptyConfigSpaceError) Error() string {
	return fmt.Sprintf("evalgo: %s: configuration space generated no candidates", e.Search)
}

// MarshalZerologObject adds the error's fields to a zerolog event.
func (e *EmptyConfigSpaceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("search", e.Search).
		Str("type", "EmptyConfigSpaceError")
}

// NewEmptyConfigSpaceError creates an EmptyConfigSpaceError with a stack
// trace attached.
func NewEmptyConfigSpaceError(search string) error {
	err := &EmptyConfigSpaceError{Search: search}
	return errors.WithStack(err)
}

// DimensionError reports input whose shape disagrees with what the fitted
// estimator expects, e.g. a feature-count mismatch at predict time.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("evalgo: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the error's fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is invalid for the operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("evalgo: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors passthroughs
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an operation receives no data.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when a matrix factorization fails on a
	// singular system.
	ErrSingularMatrix = New("singular matrix")
)
