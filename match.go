package variants

import (
	"fmt"
	"strings"
	"time"
)

// MatchTitle filters variants whose title contains query, case-insensitively.
// An empty query matches everything. This is the plain search-box behavior;
// Match handles structured predicates.
func MatchTitle(list []Variant, query string) []Variant {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	out := make([]Variant, 0, len(list))
	for _, variant := range list {
		if trimmed == "" || strings.Contains(strings.ToLower(variant.Title), trimmed) {
			out = append(out, variant.clone())
		}
	}
	return out
}

// MatchTitle filters the catalog's current variants by title substring.
func (c *Catalog) MatchTitle(query string) []Variant {
	return MatchTitle(c.variants, query)
}

// Match filters the catalog's current variants by a predicate expression
// evaluated per variant against a binding of id, title, values, price,
// available, and one key per option name. The expression must yield a bool.
// Engines are interchangeable: expr (default), CEL, and JS behind the
// js_eval build tag.
func (c *Catalog) Match(expr string) ([]Variant, error) {
	evaluator, err := c.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	return match(evaluator, c.matchLogger(), c.options.Options(), c.variants, c.ledger, expr)
}

// Match filters variants with an explicit evaluator, for callers composing
// their own state outside a Catalog.
func Match(evaluator Evaluator, options []Option, list []Variant, ledger *Ledger, expr string) ([]Variant, error) {
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	return match(evaluator, noopMatchLogger{}, options, list, ledger, expr)
}

func match(evaluator Evaluator, logger MatchLogger, options []Option, list []Variant, ledger *Ledger, expr string) ([]Variant, error) {
	if expr == "" {
		return nil, fmt.Errorf("variants: expression must not be empty")
	}

	rule, err := evaluator.Compile(expr)
	if err != nil {
		return nil, wrapEvaluatorError(engineName(evaluator), err)
	}

	engine := engineName(evaluator)
	out := make([]Variant, 0, len(list))
	for _, variant := range list {
		ctx := MatchContext{
			Binding:   MatchBinding(options, variant, ledger),
			VariantID: variant.ID,
		}.withDefaults()

		start := time.Now()
		result, evalErr := rule.Evaluate(ctx)
		duration := time.Since(start)
		evalErr = wrapEvaluationError(engine, expr, variant.ID, evalErr)
		logger.LogMatch(MatchLogEvent{
			Engine:    engine,
			Expr:      expr,
			VariantID: variant.ID,
			Duration:  duration,
			Err:       evalErr,
		})
		if evalErr != nil {
			return nil, evalErr
		}

		matched, ok := result.(bool)
		if !ok {
			return nil, wrapEvaluationError(engine, expr, variant.ID,
				fmt.Errorf("predicate returned %T, want bool", result))
		}
		if matched {
			out = append(out, variant.clone())
		}
	}
	return out, nil
}

// MatchBinding builds the per-variant expression environment: id, title,
// values, price (raw text), available, and each option name bound to the
// variant's value for that option.
func MatchBinding(options []Option, variant Variant, ledger *Ledger) map[string]any {
	values := make([]any, 0, len(variant.Values))
	for _, value := range variant.Values {
		values = append(values, value)
	}
	binding := map[string]any{
		"id":        variant.ID,
		"title":     variant.Title,
		"values":    values,
		"price":     "",
		"available": 0,
	}
	if ledger != nil {
		if entry, ok := ledger.Entry(variant.ID); ok {
			binding["price"] = entry.Price
			binding["available"] = entry.Available
		}
	}
	for i, option := range options {
		if option.Name == "" || i >= len(variant.Values) {
			continue
		}
		if _, taken := binding[option.Name]; taken {
			continue
		}
		binding[option.Name] = variant.Values[i]
	}
	return binding
}

func (c *Catalog) resolveEvaluator() (Evaluator, error) {
	if c.cfg.evaluator != nil {
		return c.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if cache := c.cfg.programCache; cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := c.cfg.functions; registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
	}
	defaultEvaluator := NewExprEvaluator(exprOpts...)
	if defaultEvaluator == nil {
		return nil, ErrNoEvaluator
	}
	c.cfg.evaluator = defaultEvaluator
	return defaultEvaluator, nil
}

func (c *Catalog) matchLogger() MatchLogger {
	if c.cfg.logger != nil {
		return c.cfg.logger
	}
	return noopMatchLogger{}
}

func engineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*variants.exprEvaluator":
		return "expr"
	case "*variants.celEvaluator":
		return "cel"
	case "*variants.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
