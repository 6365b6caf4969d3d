package validator

import (
	"collisionos/internal/estimate"
)

// Input is everything a rule may inspect. Rules never mutate it.
type Input struct {
	Document *estimate.ParsedDocument
	Customer estimate.NormalizedCustomer
	Vehicle  estimate.NormalizedVehicle
	Lines    []estimate.DamageLine
	Totals   estimate.FinancialSummary
}

// Result is the outcome of one rule check.
type Result struct {
	Passed        bool
	FieldPath     string
	ExpectedValue string
	ActualValue   string
	Message       string
}

// Validator is the interface for a single built-in validation rule.
type Validator interface {
	Validate(in *Input) []Result
	RuleKey() string
	RuleName() string
	Severity() estimate.Severity
	// Penalty is subtracted from the completeness score once per failing check.
	Penalty() int
}
