package validator

import (
	"log"

	"collisionos/internal/estimate"
)

const maxScore = 100

// Engine runs every registered rule and scores the result.
type Engine struct {
	registry *Registry
}

// NewEngine creates a new validation engine. A nil registry uses the
// built-in rules.
func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Engine{registry: registry}
}

// Validate annotates a normalized estimate. The score starts at 100 and
// loses each failing rule's penalty, clamped to [0, 100]; IsValid is false
// exactly when an error-severity rule failed.
func (e *Engine) Validate(in *Input) estimate.ValidationResult {
	res := estimate.ValidationResult{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
		Issues:   []estimate.ValidationIssue{},
	}

	penalty := 0
	for _, v := range e.registry.All() {
		for _, r := range v.Validate(in) {
			if r.Passed {
				continue
			}
			res.Issues = append(res.Issues, estimate.ValidationIssue{
				RuleKey:  v.RuleKey(),
				Field:    r.FieldPath,
				Severity: v.Severity(),
				Penalty:  v.Penalty(),
				Message:  r.Message,
			})
			penalty += v.Penalty()
			if v.Severity() == estimate.SeverityError {
				res.IsValid = false
				res.Errors = append(res.Errors, r.Message)
			} else {
				res.Warnings = append(res.Warnings, r.Message)
			}
		}
	}

	res.Score = clamp(maxScore-penalty, 0, maxScore)
	if !res.IsValid {
		log.Printf("validator.Engine: estimate invalid, score=%d errors=%d warnings=%d", res.Score, len(res.Errors), len(res.Warnings))
	}
	return res
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
