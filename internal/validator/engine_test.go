package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collisionos/internal/estimate"
	"collisionos/internal/normalize"
	"collisionos/internal/validator"
)

func inputFor(doc *estimate.ParsedDocument) *validator.Input {
	customer, vehicle, lines, _ := normalize.Normalize(doc)
	return &validator.Input{
		Document: doc,
		Customer: customer,
		Vehicle:  vehicle,
		Lines:    lines,
		Totals:   normalize.ComputeTotals(doc, lines),
	}
}

func issueKeys(res estimate.ValidationResult) []string {
	keys := make([]string, 0, len(res.Issues))
	for _, i := range res.Issues {
		keys = append(keys, i.RuleKey)
	}
	return keys
}

func TestEngine_CompleteDocument(t *testing.T) {
	doc := &estimate.ParsedDocument{
		Customer: estimate.CustomerSection{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Phone: "5550102000"},
		Vehicle:  estimate.VehicleSection{Year: "2020", Make: "Toyota", Model: "Camry", VIN: "4T1B11HK5LU000001"},
		Parts:    []estimate.PartLine{{UnitPrice: "100"}, {UnitPrice: "50"}},
		Labor:    []estimate.LaborLine{{Hours: "2", Rate: "60"}},
	}

	res := validator.NewEngine(nil).Validate(inputFor(doc))

	assert.True(t, res.IsValid)
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Issues)
}

func TestEngine_SparseDocument(t *testing.T) {
	doc := &estimate.ParsedDocument{
		Customer: estimate.CustomerSection{LastName: "Nguyen"},
	}
	in := inputFor(doc)
	require.Equal(t, 0.0, in.Totals.GrandTotal)

	res := validator.NewEngine(nil).Validate(in)

	assert.False(t, res.IsValid)
	assert.Len(t, res.Errors, 1)
	assert.Equal(t, []string{
		validator.RuleCustomerName,
		validator.RuleMakeModel,
		validator.RuleVehicleYear,
		validator.RuleGrandTotal,
		validator.RuleLinesPresent,
	}, issueKeys(res))
	assert.Contains(t, res.Warnings, "Missing vehicle make or model")
	assert.Contains(t, res.Warnings, "Missing vehicle year")
	assert.Contains(t, res.Warnings, "No parts or labor lines found")
	assert.LessOrEqual(t, res.Score, 45)
}

func TestEngine_VINLengthIsWarningOnly(t *testing.T) {
	doc := &estimate.ParsedDocument{
		Customer: estimate.CustomerSection{FirstName: "A", LastName: "B"},
		Vehicle:  estimate.VehicleSection{Year: "2015", Make: "Kia", Model: "Soul", VIN: "KNDJN2A2"},
		Parts:    []estimate.PartLine{{UnitPrice: "10"}},
	}

	res := validator.NewEngine(nil).Validate(inputFor(doc))

	assert.True(t, res.IsValid)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, []string{validator.RuleVINLength}, issueKeys(res))
	assert.Equal(t, []string{"VIN should be 17 characters"}, res.Warnings)
}

func TestEngine_EmptyVINSkipsLengthRule(t *testing.T) {
	res := validator.NewEngine(nil).Validate(inputFor(&estimate.ParsedDocument{}))
	assert.NotContains(t, issueKeys(res), validator.RuleVINLength)
}

// heavyRule always fails with a penalty large enough to push the score below zero.
type heavyRule struct{ severity estimate.Severity }

func (h heavyRule) Validate(_ *validator.Input) []validator.Result {
	return []validator.Result{{Passed: false, FieldPath: "x", Message: "heavy"}}
}
func (h heavyRule) RuleKey() string             { return "test.heavy" }
func (h heavyRule) RuleName() string            { return "heavy" }
func (h heavyRule) Severity() estimate.Severity { return h.severity }
func (h heavyRule) Penalty() int                { return 250 }

// bonusRule fails with a negative penalty, which must not lift the score above 100.
type bonusRule struct{}

func (bonusRule) Validate(_ *validator.Input) []validator.Result {
	return []validator.Result{{Passed: false, FieldPath: "y", Message: "bonus"}}
}
func (bonusRule) RuleKey() string             { return "test.bonus" }
func (bonusRule) RuleName() string            { return "bonus" }
func (bonusRule) Severity() estimate.Severity { return estimate.SeverityWarning }
func (bonusRule) Penalty() int                { return -50 }

func TestEngine_ScoreBounds(t *testing.T) {
	reg := validator.NewRegistry()
	reg.Register(heavyRule{severity: estimate.SeverityWarning})
	res := validator.NewEngine(reg).Validate(&validator.Input{})
	assert.Equal(t, 0, res.Score)
	assert.True(t, res.IsValid, "warnings never invalidate")

	reg = validator.NewRegistry()
	reg.Register(bonusRule{})
	res = validator.NewEngine(reg).Validate(&validator.Input{})
	assert.Equal(t, 100, res.Score)
}

func TestEngine_IsValidIffErrorRuleFired(t *testing.T) {
	docs := []*estimate.ParsedDocument{
		{},
		{Financial: estimate.FinancialSection{GrandTotal: "10"}},
		{Parts: []estimate.PartLine{{UnitPrice: "(5)"}}},
		{Labor: []estimate.LaborLine{{Hours: "1", Rate: "40"}}, Vehicle: estimate.VehicleSection{VIN: "SHORT"}},
	}
	engine := validator.NewEngine(nil)

	for i, doc := range docs {
		res := engine.Validate(inputFor(doc))

		hasError := false
		for _, issue := range res.Issues {
			if issue.Severity == estimate.SeverityError {
				hasError = true
			}
		}
		assert.Equal(t, !hasError, res.IsValid, "doc %d", i)
		assert.GreaterOrEqual(t, res.Score, 0, "doc %d", i)
		assert.LessOrEqual(t, res.Score, 100, "doc %d", i)
	}
}

func TestRegistry_OrderAndReplace(t *testing.T) {
	reg := validator.DefaultRegistry()
	all := reg.All()
	require.Len(t, all, 6)
	assert.Equal(t, validator.RuleCustomerName, all[0].RuleKey())
	assert.Equal(t, validator.RuleVINLength, all[5].RuleKey())

	reg.Register(heavyRule{severity: estimate.SeverityError})
	reg.Register(heavyRule{severity: estimate.SeverityWarning})
	assert.Len(t, reg.All(), 7)
	assert.Equal(t, estimate.SeverityWarning, reg.Get("test.heavy").Severity())
	assert.Nil(t, reg.Get("missing"))
}
