package variants

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMaxOptions is returned when adding a fourth option.
var ErrMaxOptions = errors.New("variants: option limit reached")

// ErrInvalidPrice is returned when a group price edit does not parse to a
// finite, non-negative number.
var ErrInvalidPrice = errors.New("variants: invalid price")

// ErrUnknownOption is returned when an operation names an option id that does
// not exist.
var ErrUnknownOption = errors.New("variants: unknown option")

// ErrNoEvaluator is returned when Match runs without a usable evaluator.
var ErrNoEvaluator = errors.New("variants: evaluator not configured")

// ValidationError reports which field of an option edit failed so callers can
// surface it next to the offending input. State is never mutated when one is
// returned.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("variants: invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine    string
	Expr      string
	VariantID string
	Err       error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("variants: %s evaluator %s variant=%s: %v", e.Engine, describeExpression(e.Expr), e.VariantID, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "variants:") {
		return err
	}
	return fmt.Errorf("variants: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, variantID string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.VariantID == "" {
			evalErr.VariantID = variantID
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:    engine,
		Expr:      expr,
		VariantID: variantID,
		Err:       err,
	}
}
