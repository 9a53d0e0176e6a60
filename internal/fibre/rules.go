package fibre

import "fmt"

// Severity captures how a rule finding affects issue.
type Severity string

// Finding severities.
const (
	// SeverityBlock keeps the record incomplete.
	SeverityBlock Severity = "block"
	// SeverityWarn is reported but does not affect completeness.
	SeverityWarn Severity = "warn"
)

// Violation reports one gap found in a record. Observation is the 1-based
// observation index the finding refers to, or 0 for the record as a whole.
type Violation struct {
	Rule        string
	Severity    Severity
	Message     string
	Observation int
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// Complete reports whether no blocking violations were found. It agrees with
// IsComplete for records evaluated by the default engine.
func (r Result) Complete() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return false
		}
	}
	return true
}

// Messages lists violation messages in evaluation order.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Message)
	}
	return out
}

// Rule inspects a record.
type Rule interface {
	Name() string
	Evaluate(r Record) Result
}

// Engine evaluates rules in registration order.
type Engine struct {
	rules []Rule
}

// NewEngine constructs an engine with no rules.
func NewEngine() *Engine { return &Engine{} }

// NewDefaultEngine builds an engine with the built-in completeness rules.
func NewDefaultEngine() *Engine {
	e := NewEngine()
	e.Register(SizingRule())
	e.Register(FibreResolutionRule())
	e.Register(ObservationLimitRule())
	return e
}

// Register appends a rule to the engine.
func (e *Engine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate executes all registered rules and aggregates their results.
func (e *Engine) Evaluate(r Record) Result {
	var combined Result
	for _, rule := range e.rules {
		combined.Merge(rule.Evaluate(r))
	}
	return combined
}

var defaultEngine = NewDefaultEngine()

// Assess evaluates r against the default rules, listing every gap rather than
// stopping at the first.
func Assess(r Record) Result { return defaultEngine.Evaluate(r) }

type ruleFunc struct {
	name string
	fn   func(Record) Result
}

func (f ruleFunc) Name() string             { return f.name }
func (f ruleFunc) Evaluate(r Record) Result { return f.fn(r) }

// SizingRule requires the sub-sample mass or at least one dimension.
func SizingRule() Rule {
	return ruleFunc{name: "sizing", fn: func(r Record) Result {
		if hasSizing(r) {
			return Result{}
		}
		msg := "sample sizing mode not selected"
		switch r.Sizing {
		case SizingMass:
			msg = "sample mass not recorded"
		case SizingDimensions:
			msg = "sample dimensions not recorded"
		}
		return Result{Violations: []Violation{{Rule: "sizing", Severity: SeverityBlock, Message: msg}}}
	}}
}

// FibreResolutionRule requires a result on every observation unless the
// sample is flagged as containing no fibres.
func FibreResolutionRule() Rule {
	return ruleFunc{name: "fibre_resolution", fn: func(r Record) Result {
		if r.NoFibresDetected {
			return Result{}
		}
		if len(r.Observations) == 0 {
			return Result{Violations: []Violation{{Rule: "fibre_resolution", Severity: SeverityBlock, Message: "no fibre observations recorded"}}}
		}
		var res Result
		for i, obs := range r.Observations {
			if blank(obs.Result) {
				res.Violations = append(res.Violations, Violation{
					Rule:        "fibre_resolution",
					Severity:    SeverityBlock,
					Message:     fmt.Sprintf("fibre %d has no result", i+1),
					Observation: i + 1,
				})
			}
		}
		return res
	}}
}

// ObservationLimitRule warns when more than MaxObservations are present.
func ObservationLimitRule() Rule {
	return ruleFunc{name: "observation_limit", fn: func(r Record) Result {
		if len(r.Observations) <= MaxObservations {
			return Result{}
		}
		return Result{Violations: []Violation{{
			Rule:     "observation_limit",
			Severity: SeverityWarn,
			Message:  fmt.Sprintf("%d fibre observations exceeds the limit of %d", len(r.Observations), MaxObservations),
		}}}
	}}
}
