package normalize

import (
	"github.com/shopspring/decimal"

	"collisionos/internal/estimate"
)

// ComputeTotals derives the estimate aggregates. Each of parts, labor and tax
// takes the document's explicit non-zero aggregate when present and
// otherwise sums the matching line extended prices (tax has no line
// fallback). The grand total takes the document value when present,
// otherwise parts + labor + tax. The grand total is never negative.
func ComputeTotals(doc *estimate.ParsedDocument, lines []estimate.DamageLine) estimate.FinancialSummary {
	var fin estimate.FinancialSection
	if doc != nil {
		fin = doc.Financial
	}

	var partsSum, laborSum decimal.Decimal
	for _, l := range lines {
		ext := decimal.NewFromFloat(l.ExtendedPrice)
		switch l.Kind {
		case estimate.LineKindPart:
			partsSum = partsSum.Add(ext)
		case estimate.LineKindLabor:
			laborSum = laborSum.Add(ext)
		}
	}

	parts, partsSrc := pick(fin.PartsTotal, partsSum)
	labor, laborSrc := pick(fin.LaborTotal, laborSum)
	tax, taxSrc := pick(fin.TaxTotal, decimal.Zero)
	grand, grandSrc := pick(fin.GrandTotal, parts.Add(labor).Add(tax))
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	return estimate.FinancialSummary{
		PartsTotal:  money(parts),
		LaborTotal:  money(labor),
		TaxTotal:    money(tax),
		GrandTotal:  money(grand),
		PartsSource: partsSrc,
		LaborSource: laborSrc,
		TaxSource:   taxSrc,
		GrandSource: grandSrc,
	}
}

func pick(explicit string, computed decimal.Decimal) (decimal.Decimal, estimate.TotalSource) {
	if v := ParseAmount(explicit); !v.IsZero() {
		return v.Round(2), estimate.TotalSourceDocument
	}
	return computed.Round(2), estimate.TotalSourceComputed
}
