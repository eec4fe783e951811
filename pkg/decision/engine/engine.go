package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tabular-hq/verdict/pkg/decision/hitpolicy"
	"tabular-hq/verdict/pkg/dmn"
	"tabular-hq/verdict/pkg/execution"
	"tabular-hq/verdict/pkg/feel"
	feelerrors "tabular-hq/verdict/pkg/feel/errors"
	"tabular-hq/verdict/pkg/telemetry/metrics"
)

// Engine evaluates decision tables against input data.
type Engine interface {
	// Execute resolves the referenced decision and evaluates it. The
	// execution is recorded in history regardless of outcome.
	Execute(ctx context.Context, req *Request) (*Result, error)

	// ExecuteBatch evaluates several requests independently. It never
	// returns an error: failures become failed results.
	ExecuteBatch(ctx context.Context, reqs []*Request) []*Result

	// ExecuteDecision evaluates an already-resolved decision directly,
	// bypassing resolution and lifecycle checks.
	ExecuteDecision(ctx context.Context, d *dmn.Decision, inputData map[string]any, opts *Options) (*Result, error)

	// Validate checks a decision's structure without executing it.
	Validate(d *dmn.Decision) *ValidationReport

	// ValidateByID resolves a stored decision and validates it.
	ValidateByID(ctx context.Context, id string) (*ValidationReport, error)
}

// Config tunes a TableEngine.
type Config struct {
	// Defaults apply to requests that carry no per-request options.
	Defaults Options

	// Clock supplies timestamps. Defaults to time.Now.
	Clock func() time.Time

	// NewID mints execution ids. Defaults to UUID v4.
	NewID func() string

	// Metrics records evaluation counts, latency and hit policy violations.
	// Nil disables recording.
	Metrics *metrics.EvaluationMetrics
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() *Config {
	return &Config{Defaults: DefaultOptions()}
}

// TableEngine is the standard Engine implementation. It is stateless apart
// from its collaborators and safe for concurrent use.
type TableEngine struct {
	cfg     *Config
	source  DecisionSource
	history execution.Storage
	matcher *Matcher
	logger  *slog.Logger
}

// NewTableEngine creates a decision engine. The history storage may be nil,
// in which case executions are not recorded.
func NewTableEngine(cfg *Config, source DecisionSource, history execution.Storage, logger *slog.Logger) (*TableEngine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if source == nil {
		return nil, fmt.Errorf("decision source cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TableEngine{
		cfg:     cfg,
		source:  source,
		history: history,
		matcher: NewMatcher(logger),
		logger:  logger,
	}, nil
}

// Execute resolves and evaluates one decision.
func (e *TableEngine) Execute(ctx context.Context, req *Request) (*Result, error) {
	result, err := e.run(ctx, req)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExecuteBatch evaluates requests independently in order. Failed executions
// keep their recorded result shape; requests that never reached evaluation
// (bad reference, nil request) get a synthetic failed result.
func (e *TableEngine) ExecuteBatch(ctx context.Context, reqs []*Request) []*Result {
	results := make([]*Result, len(reqs))
	for i, req := range reqs {
		result, err := e.run(ctx, req)
		if err != nil && result == nil {
			result = &Result{
				Status:       execution.StatusFailed.ResultValue(),
				ErrorMessage: err.Error(),
			}
			if req != nil {
				result.DecisionID = req.DecisionID
				result.DecisionKey = req.DecisionKey
			}
		}
		results[i] = result
	}
	return results
}

// ExecuteDecision evaluates a decision value directly. Lifecycle status is
// not checked; callers use it for drafts and ad-hoc tables.
func (e *TableEngine) ExecuteDecision(ctx context.Context, d *dmn.Decision, inputData map[string]any, opts *Options) (*Result, error) {
	if d == nil {
		return nil, &InvalidRequestError{Message: ErrNilDecision.Error()}
	}
	result, evalErr := e.evaluate(ctx, d, inputData, e.options(opts))
	e.persist(ctx, &Request{InputData: inputData}, d, result, evalErr)
	if evalErr != nil {
		return nil, evalErr
	}
	return result, nil
}

// run resolves, evaluates and records one request. Unlike Execute it hands
// back the failed result alongside the error so batch mode can keep it.
func (e *TableEngine) run(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, &InvalidRequestError{Message: "request cannot be nil"}
	}
	d, err := e.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	result, evalErr := e.evaluate(ctx, d, req.InputData, e.options(req.Options))
	e.persist(ctx, req, d, result, evalErr)
	return result, evalErr
}

// resolve loads the referenced decision. The key path only ever yields
// published versions.
func (e *TableEngine) resolve(ctx context.Context, req *Request) (*dmn.Decision, error) {
	switch {
	case req.DecisionID != "":
		d, err := e.source.FindByID(ctx, req.DecisionID)
		if err != nil {
			return nil, fmt.Errorf("resolving decision %s: %w", req.DecisionID, err)
		}
		if d == nil {
			return nil, &NotFoundError{DecisionID: req.DecisionID}
		}
		return d, nil

	case req.DecisionKey != "":
		if req.Version > 0 {
			d, err := e.source.FindByKey(ctx, req.DecisionKey, req.TenantID, req.Version)
			if err != nil {
				return nil, fmt.Errorf("resolving decision key %q: %w", req.DecisionKey, err)
			}
			if d == nil || !d.Status.IsExecutable() {
				return nil, &NotFoundError{DecisionKey: req.DecisionKey, Version: req.Version, TenantID: req.TenantID}
			}
			return d, nil
		}
		d, err := e.source.FindHighestPublishedByKey(ctx, req.DecisionKey, req.TenantID)
		if err != nil {
			return nil, fmt.Errorf("resolving decision key %q: %w", req.DecisionKey, err)
		}
		if d == nil {
			return nil, &NotFoundError{DecisionKey: req.DecisionKey, TenantID: req.TenantID}
		}
		return d, nil

	default:
		return nil, &InvalidRequestError{Message: "decision id or decision key required"}
	}
}

// options resolves per-request options against the engine defaults.
func (e *TableEngine) options(o *Options) Options {
	if o != nil {
		return *o
	}
	return e.cfg.Defaults
}

// evaluate runs the decision table. The returned result is non-nil even on
// failure so the execution record can carry the audit trail.
func (e *TableEngine) evaluate(ctx context.Context, d *dmn.Decision, inputData map[string]any, opts Options) (*Result, error) {
	start := e.cfg.Clock()

	result := &Result{
		ExecutionID:     e.cfg.NewID(),
		DecisionID:      d.ID,
		DecisionKey:     d.DecisionKey,
		DecisionVersion: d.Version,
	}

	var audit *execution.AuditContainer
	if opts.EnableAudit {
		audit = &execution.AuditContainer{
			StrictMode: opts.StrictMode,
			ForceDMN11: opts.ForceDMN11,
			HitPolicy:  string(d.HitPolicy),
		}
		result.Audit = audit
	}

	metricKey := d.DecisionKey
	if metricKey == "" {
		metricKey = d.ID
	}

	rulesVisited := 0
	finish := func(status execution.Status, evalErr error) (*Result, error) {
		elapsed := e.cfg.Clock().Sub(start)
		result.Status = status.ResultValue()
		result.ExecutionTimeMs = elapsed.Milliseconds()
		if evalErr != nil {
			result.ErrorMessage = evalErr.Error()
		}
		if audit != nil {
			audit.DecisionResult = result.OutputResult
		}
		e.cfg.Metrics.RecordEvaluation(metricKey, result.Status, elapsed, rulesVisited)
		return result, evalErr
	}

	if inputData == nil {
		inputData = map[string]any{}
	}

	// Resolve each input clause once: the caller's map wins by clause id,
	// otherwise the clause expression evaluates against the variables.
	inputValues := make(map[string]any, len(d.Inputs))
	for _, in := range d.Inputs {
		if v, ok := inputData[in.ID]; ok {
			inputValues[in.ID] = v
		} else {
			v, err := e.resolveInput(d, in, inputData)
			if err != nil {
				return finish(execution.StatusFailed, err)
			}
			inputValues[in.ID] = v
		}
		if in.Required && inputValues[in.ID] == nil {
			return finish(execution.StatusFailed, &InvalidRequestError{
				Message: fmt.Sprintf("required input %q has no value", inputLabel(in)),
			})
		}
	}

	cfg := hitpolicy.ConfigFor(d)
	cfg.ForceDMN11 = opts.ForceDMN11
	handler := hitpolicy.ForPolicy(d.HitPolicy, cfg)
	cont, canStop := hitpolicy.AsContinueEvaluating(handler)

	var results []hitpolicy.RuleResult
	for i, rule := range d.Rules {
		if err := ctx.Err(); err != nil {
			return finish(execution.StatusFailed, &EvaluationError{DecisionID: d.ID, Cause: err})
		}

		ruleID := rule.ID
		if ruleID == "" {
			ruleID = dmn.SyntheticRuleID(i)
		}
		rulesVisited++

		// All conditions are checked even after one fails so the audit
		// trail shows every comparison.
		entry := &execution.AuditEntry{RuleNumber: i + 1, RuleID: ruleID}
		matched := true
		for _, cond := range rule.Conditions {
			value := inputValues[cond.InputID]
			ok := e.matcher.Matches(value, cond.Operator, cond.Value)
			entry.InputEntries = append(entry.InputEntries, &execution.AuditInputEntry{
				InputID:        cond.InputID,
				InputValue:     value,
				Operator:       cond.Operator,
				ConditionValue: cond.Value,
				Matched:        ok,
			})
			if !ok {
				matched = false
			}
		}
		entry.Matched = matched

		if matched {
			outputs := make(map[string]any, len(rule.Outputs))
			for _, out := range rule.Outputs {
				entry.OutputEntries = append(entry.OutputEntries, &execution.AuditOutputEntry{
					OutputID:    out.OutputID,
					OutputValue: out.Value,
				})
				outputs[outputName(d, out.OutputID)] = out.Value
			}
			results = append(results, hitpolicy.RuleResult{
				RuleID:    ruleID,
				RuleIndex: i,
				Priority:  rule.Priority,
				Outputs:   outputs,
			})
		}

		stop := false
		if canStop {
			if keepGoing, reason := cont.ShouldContinueEvaluating(matched); !keepGoing {
				entry.ValidationMessage = reason
				stop = true
			}
		}
		if audit != nil {
			audit.Entries = append(audit.Entries, entry)
		}
		if stop {
			break
		}
	}

	outcome := handler.Handle(results)
	result.MatchedRules = outcome.MatchedRuleIDs
	result.MatchedCount = len(outcome.MatchedRuleIDs)
	result.OutputResult = outcome.Output

	if checker, ok := hitpolicy.AsValidityChecker(handler); ok && len(results) > 0 {
		if verr := checker.EvaluateRuleValidity(results, opts.StrictMode); verr != nil {
			e.cfg.Metrics.RecordViolation(metricKey, string(d.HitPolicy))
			if opts.StrictMode {
				return finish(execution.StatusFailed, verr)
			}
			if audit != nil {
				audit.ValidationMessage = verr.Error()
			}
		}
	}

	if len(results) > 0 {
		if composer, ok := hitpolicy.AsComposer(handler); ok {
			result.OutputResult = composer.ComposeDecisionResults(results)
		}
	}

	if !outcome.HasMatch {
		result.OutputResult = nil
		result.MatchedRules = nil
		result.MatchedCount = 0
		return finish(execution.StatusNoMatch, nil)
	}
	return finish(execution.StatusSuccess, nil)
}

// resolveInput evaluates an input clause's expression against the caller's
// variables. Unknown variables resolve to nil so presence operators can
// test them; real evaluation failures abort the execution.
func (e *TableEngine) resolveInput(d *dmn.Decision, in *dmn.DecisionInput, inputData map[string]any) (any, error) {
	expr := strings.TrimSpace(in.Expression)
	if expr == "" {
		return nil, nil
	}
	v, err := feel.Evaluate(expr, inputData)
	if err != nil {
		var ferr *feelerrors.Error
		if errors.As(err, &ferr) {
			switch ferr.Kind {
			case feelerrors.KindVariableNotFound, feelerrors.KindNullValue:
				return nil, nil
			}
		}
		return nil, &EvaluationError{DecisionID: d.ID, Expression: in.Expression, Cause: err}
	}
	return v, nil
}

// persist appends the execution record. Storage failures are logged and
// never mask the decision result.
func (e *TableEngine) persist(ctx context.Context, req *Request, d *dmn.Decision, result *Result, evalErr error) {
	if e.history == nil || result == nil {
		return
	}

	rec := &execution.Record{
		ID:                result.ExecutionID,
		DecisionID:        d.ID,
		DecisionKey:       d.DecisionKey,
		DecisionVersion:   d.Version,
		Status:            recordStatus(result.Status),
		OutputResult:      result.OutputResult,
		MatchedRuleIDs:    result.MatchedRules,
		MatchedCount:      result.MatchedCount,
		ExecutionTimeMs:   result.ExecutionTimeMs,
		InputData:         req.InputData,
		ProcessInstanceID: req.ProcessInstanceID,
		ActivityID:        req.ActivityID,
		TaskID:            req.TaskID,
		TenantID:          req.TenantID,
		ErrorMessage:      result.ErrorMessage,
		Audit:             result.Audit,
		CreateTime:        e.cfg.Clock(),
	}
	if evalErr != nil {
		rec.ErrorDetails = fmt.Sprintf("%T: %v", evalErr, evalErr)
	}

	if err := e.history.Append(ctx, rec); err != nil {
		e.logger.Error("failed to persist execution record",
			"execution_id", rec.ID,
			"decision_id", rec.DecisionID,
			"error", err,
		)
	}
}

// recordStatus maps a result status back to its record form.
func recordStatus(result string) execution.Status {
	switch result {
	case execution.StatusSuccess.ResultValue():
		return execution.StatusSuccess
	case execution.StatusNoMatch.ResultValue():
		return execution.StatusNoMatch
	default:
		return execution.StatusFailed
	}
}

// outputName maps an output entry to its result key: the clause name, the
// clause id when unnamed, or the raw reference when the clause is unknown.
func outputName(d *dmn.Decision, outputID string) string {
	if out := d.GetOutput(outputID); out != nil {
		if out.Name != "" {
			return out.Name
		}
		return out.ID
	}
	return outputID
}

// inputLabel names an input clause for error messages.
func inputLabel(in *dmn.DecisionInput) string {
	if in.Label != "" {
		return in.Label
	}
	if in.Expression != "" {
		return in.Expression
	}
	return in.ID
}
