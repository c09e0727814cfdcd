package variants

import (
	"time"

	"github.com/goliatone/go-variants/pkg/activity"
)

// Option is a named, ordered set of selectable values (e.g. Color: Black,
// White). IDs are opaque, assigned once at creation, and never reused.
type Option struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

func (o Option) clone() Option {
	out := o
	out.Values = append([]string(nil), o.Values...)
	return out
}

// Variant is one concrete combination of exactly one value per option. It is
// derived, never hand-edited: identity is the position in the cartesian
// expansion, so structural edits to the options realign ids to new
// combinations.
type Variant struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Values []string `json:"values"`
}

func (v Variant) clone() Variant {
	out := v
	out.Values = append([]string(nil), v.Values...)
	return out
}

// MatchContext carries inputs needed when evaluating a predicate expression
// against one variant.
type MatchContext struct {
	// Binding exposes the variant to the expression: id, title, values,
	// price, available, plus one key per option name.
	Binding   map[string]any
	Now       *time.Time
	Args      map[string]any
	Metadata  map[string]any
	VariantID string
}

func (ctx MatchContext) withDefaultNow() MatchContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx MatchContext) withDefaultMaps() MatchContext {
	if ctx.Binding == nil {
		ctx.Binding = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx MatchContext) withDefaults() MatchContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx MatchContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx MatchContext) variantLabel() string {
	if ctx.VariantID != "" {
		return ctx.VariantID
	}
	return "unknown"
}

// Evaluator executes predicate expressions against a match context.
type Evaluator interface {
	Evaluate(ctx MatchContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx MatchContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// CatalogOption configures a Catalog at construction time.
type CatalogOption func(*catalogConfig)

type catalogConfig struct {
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       MatchLogger
	hooks        activity.Hooks
	activity     activity.Config
	newID        func() string
}

func applyCatalogOptions(opts []CatalogOption) catalogConfig {
	cfg := catalogConfig{
		activity: activity.Config{Enabled: true},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator configures the evaluator used by Match.
func WithEvaluator(e Evaluator) CatalogOption {
	return func(cfg *catalogConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a compiled-program cache shared by the default
// evaluator.
func WithProgramCache(cache ProgramCache) CatalogOption {
	return func(cfg *catalogConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry configures custom predicate functions.
func WithFunctionRegistry(registry *FunctionRegistry) CatalogOption {
	return func(cfg *catalogConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for predicate expressions.
func WithCustomFunction(name string, fn Function) CatalogOption {
	return func(cfg *catalogConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithMatchLogger attaches a logger that records every predicate evaluation.
func WithMatchLogger(logger MatchLogger) CatalogOption {
	return func(cfg *catalogConfig) {
		if logger == nil {
			cfg.logger = noopMatchLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithActivityHooks attaches activity hooks notified after every settled
// mutation. Hooks are cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) CatalogOption {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *catalogConfig) {
		cfg.hooks = normalized
	}
}

// WithActivityConfig overrides emission defaults (enabled flag, channel).
func WithActivityConfig(config activity.Config) CatalogOption {
	return func(cfg *catalogConfig) {
		cfg.activity = config
	}
}

// WithIDGenerator overrides option id generation. Intended for tests that
// need deterministic ids.
func WithIDGenerator(fn func() string) CatalogOption {
	return func(cfg *catalogConfig) {
		cfg.newID = fn
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
