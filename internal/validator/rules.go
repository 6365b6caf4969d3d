package validator

import (
	"fmt"
	"strconv"

	"collisionos/internal/estimate"
)

// Built-in rule keys.
const (
	RuleCustomerName = "customer.name"
	RuleMakeModel    = "vehicle.make_model"
	RuleVehicleYear  = "vehicle.year"
	RuleGrandTotal   = "totals.grand_total"
	RuleLinesPresent = "lines.present"
	RuleVINLength    = "vehicle.vin_length"
)

const vinLength = 17

// checkValidator runs a single predicate over the input.
type checkValidator struct {
	ruleKey   string
	ruleName  string
	fieldPath string
	severity  estimate.Severity
	penalty   int
	expected  string
	// check returns whether the rule passed and the observed value.
	check func(*Input) (bool, string)
	// applies gates the rule; nil means always.
	applies func(*Input) bool
}

func (v *checkValidator) RuleKey() string             { return v.ruleKey }
func (v *checkValidator) RuleName() string            { return v.ruleName }
func (v *checkValidator) Severity() estimate.Severity { return v.severity }
func (v *checkValidator) Penalty() int                { return v.penalty }

func (v *checkValidator) Validate(in *Input) []Result {
	if v.applies != nil && !v.applies(in) {
		return nil
	}
	passed, actual := v.check(in)
	return []Result{{
		Passed:        passed,
		FieldPath:     v.fieldPath,
		ExpectedValue: v.expected,
		ActualValue:   actual,
		Message:       message(passed, v.ruleName, v.fieldPath),
	}}
}

func message(passed bool, ruleName, fieldPath string) string {
	if passed {
		return fmt.Sprintf("%s: %s is valid", ruleName, fieldPath)
	}
	return ruleName
}

// BuiltinValidators returns the estimate completeness rules in report order.
func BuiltinValidators() []Validator {
	return []Validator{
		&checkValidator{
			ruleKey:   RuleCustomerName,
			ruleName:  "Missing customer name",
			fieldPath: "customer.name",
			severity:  estimate.SeverityWarning,
			penalty:   10,
			expected:  "first and last name",
			check: func(in *Input) (bool, string) {
				c := in.Customer
				return c.FirstName != "" && c.LastName != "", c.FullName
			},
		},
		&checkValidator{
			ruleKey:   RuleMakeModel,
			ruleName:  "Missing vehicle make or model",
			fieldPath: "vehicle.make_model",
			severity:  estimate.SeverityWarning,
			penalty:   10,
			expected:  "make and model",
			check: func(in *Input) (bool, string) {
				return in.Vehicle.Make != "" && in.Vehicle.Model != "", in.Vehicle.Make + " " + in.Vehicle.Model
			},
		},
		&checkValidator{
			ruleKey:   RuleVehicleYear,
			ruleName:  "Missing vehicle year",
			fieldPath: "vehicle.year",
			severity:  estimate.SeverityWarning,
			penalty:   5,
			expected:  "model year",
			check: func(in *Input) (bool, string) {
				return in.Vehicle.Year != 0, strconv.Itoa(in.Vehicle.Year)
			},
		},
		&checkValidator{
			ruleKey:   RuleGrandTotal,
			ruleName:  "Grand total must be greater than zero",
			fieldPath: "totals.grand_total",
			severity:  estimate.SeverityError,
			penalty:   20,
			expected:  "> 0",
			check: func(in *Input) (bool, string) {
				return in.Totals.GrandTotal > 0, strconv.FormatFloat(in.Totals.GrandTotal, 'f', 2, 64)
			},
		},
		&checkValidator{
			ruleKey:   RuleLinesPresent,
			ruleName:  "No parts or labor lines found",
			fieldPath: "damage.lines",
			severity:  estimate.SeverityWarning,
			penalty:   15,
			expected:  "at least one part or labor line",
			check: func(in *Input) (bool, string) {
				return len(in.Lines) > 0, strconv.Itoa(len(in.Lines))
			},
		},
		&checkValidator{
			ruleKey:   RuleVINLength,
			ruleName:  "VIN should be 17 characters",
			fieldPath: "vehicle.vin",
			severity:  estimate.SeverityWarning,
			penalty:   0,
			expected:  "17 characters",
			applies:   func(in *Input) bool { return in.Vehicle.VIN != "" },
			check: func(in *Input) (bool, string) {
				return len(in.Vehicle.VIN) == vinLength, in.Vehicle.VIN
			},
		},
	}
}
