// Package normalize converts a parsed estimate into canonical customer,
// vehicle, damage line and job fragments, and computes the estimate totals.
// Every function here is pure and never fails.
package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"collisionos/internal/domain"
	"collisionos/internal/estimate"
)

const (
	minYear = 1900
	maxYear = 2100

	// maxDescriptionLines caps how many damage lines feed the job description.
	maxDescriptionLines = 5
)

// Normalize maps a ParsedDocument to canonical fragments. A nil document
// yields zero-valued fragments.
func Normalize(doc *estimate.ParsedDocument) (estimate.NormalizedCustomer, estimate.NormalizedVehicle, []estimate.DamageLine, estimate.JobSeed) {
	if doc == nil {
		doc = &estimate.ParsedDocument{}
	}
	customer := Customer(doc.Customer, doc.Claim)
	vehicle := Vehicle(doc.Vehicle)
	lines := DamageLines(doc.Parts, doc.Labor)
	seed := Seed(doc, customer, lines)
	return customer, vehicle, lines, seed
}

// Customer applies the name policy and field clean-up to a customer section.
func Customer(c estimate.CustomerSection, claim estimate.ClaimSection) estimate.NormalizedCustomer {
	first, last := cleanText(c.FirstName), cleanText(c.LastName)
	if first == "" && last == "" {
		first, last = splitFullName(cleanText(c.FullName))
	}

	insurer := cleanText(c.InsuranceCompany)
	if insurer == "" {
		insurer = cleanText(claim.InsuranceCompany)
	}

	return estimate.NormalizedCustomer{
		FirstName:        first,
		LastName:         last,
		FullName:         strings.TrimSpace(first + " " + last),
		Phone:            NormalizePhone(c.Phone),
		Email:            NormalizeEmail(c.Email),
		Address:          cleanText(c.Address),
		City:             cleanText(c.City),
		State:            strings.ToUpper(cleanText(c.State)),
		Zip:              cleanText(c.Zip),
		InsuranceCompany: insurer,
	}
}

// splitFullName puts the first whitespace token in first and the rest in
// last. "Last, First" is honoured when a comma is present.
func splitFullName(full string) (string, string) {
	if full == "" {
		return "", ""
	}
	if before, after, ok := strings.Cut(full, ","); ok {
		return cleanText(after), cleanText(before)
	}
	parts := strings.Fields(full)
	return parts[0], strings.Join(parts[1:], " ")
}

// Vehicle cleans a vehicle section. Year outside 1900-2100 becomes zero.
func Vehicle(v estimate.VehicleSection) estimate.NormalizedVehicle {
	year := ParseInt(v.Year)
	if year < minYear || year > maxYear {
		year = 0
	}
	mileage := ParseInt(v.Mileage)
	if mileage < 0 {
		mileage = 0
	}
	return estimate.NormalizedVehicle{
		Year:         year,
		Make:         cleanText(v.Make),
		Model:        cleanText(v.Model),
		VIN:          NormalizeVIN(v.VIN),
		License:      strings.ToUpper(cleanText(v.License)),
		Mileage:      mileage,
		Color:        cleanText(v.Color),
		Engine:       cleanText(v.Engine),
		Transmission: cleanText(v.Transmission),
	}
}

// DamageLines converts part and labor lines, parts first. Lines without a
// usable source line number are numbered by their position.
func DamageLines(parts []estimate.PartLine, labor []estimate.LaborLine) []estimate.DamageLine {
	lines := make([]estimate.DamageLine, 0, len(parts)+len(labor))
	for _, p := range parts {
		lines = append(lines, partLine(p, len(lines)+1))
	}
	for _, l := range labor {
		lines = append(lines, laborLine(l, len(lines)+1))
	}
	return lines
}

func partLine(p estimate.PartLine, seq int) estimate.DamageLine {
	qty := decimal.NewFromInt(1)
	if strings.TrimSpace(p.Quantity) != "" {
		qty = ParseAmount(p.Quantity)
	}
	price := ParseAmount(p.UnitPrice)

	ext := price.Mul(qty)
	if strings.TrimSpace(p.ExtendedPrice) != "" {
		ext = ParseAmount(p.ExtendedPrice)
	}

	return estimate.DamageLine{
		Kind:          estimate.LineKindPart,
		LineNumber:    lineNumber(p.LineNumber, seq),
		Category:      estimate.CategoryParts,
		Description:   cleanText(p.Description),
		PartNumber:    cleanText(p.PartNumber),
		PartType:      cleanText(p.PartType),
		Operation:     cleanText(p.Operation),
		Quantity:      qty.InexactFloat64(),
		UnitPrice:     money(price),
		ExtendedPrice: money(ext),
	}
}

func laborLine(l estimate.LaborLine, seq int) estimate.DamageLine {
	hours := ParseAmount(l.Hours)
	rate := ParseAmount(l.Rate)

	ext := hours.Mul(rate)
	if strings.TrimSpace(l.Amount) != "" {
		ext = ParseAmount(l.Amount)
	}

	desc := cleanText(l.Description)
	if desc == "" {
		desc = cleanText(l.Operation)
	}

	return estimate.DamageLine{
		Kind:          estimate.LineKindLabor,
		LineNumber:    lineNumber(l.LineNumber, seq),
		Category:      estimate.CategoryLabor,
		Description:   desc,
		Operation:     cleanText(l.Operation),
		LaborType:     cleanText(l.LaborType),
		Hours:         hours.InexactFloat64(),
		Rate:          money(rate),
		ExtendedPrice: money(ext),
	}
}

func lineNumber(raw string, seq int) int {
	if n := ParseInt(raw); n > 0 {
		return n
	}
	return seq
}

// Seed builds the job fragment from the estimate and claim headers.
func Seed(doc *estimate.ParsedDocument, customer estimate.NormalizedCustomer, lines []estimate.DamageLine) estimate.JobSeed {
	insurer := cleanText(doc.Claim.InsuranceCompany)
	if insurer == "" {
		insurer = customer.InsuranceCompany
	}
	return estimate.JobSeed{
		EstimateNumber:   cleanText(doc.Estimate.Number),
		EstimateDate:     cleanText(doc.Estimate.Date),
		Estimator:        cleanText(doc.Estimate.Estimator),
		ClaimNumber:      cleanText(doc.Claim.ClaimNumber),
		PolicyNumber:     cleanText(doc.Claim.PolicyNumber),
		InsuranceCompany: insurer,
		AdjusterName:     cleanText(doc.Claim.AdjusterName),
		Deductible:       money(ParseAmount(doc.Claim.Deductible)),
		LossDate:         cleanText(doc.Claim.LossDate),
		Description:      describe(lines),
		Status:           string(domain.JobStatusEstimate),
		Priority:         string(domain.JobPriorityNormal),
	}
}

// describe summarises damage line descriptions for the job card.
func describe(lines []estimate.DamageLine) string {
	var descs []string
	seen := make(map[string]bool)
	for _, l := range lines {
		if l.Description == "" || seen[l.Description] {
			continue
		}
		seen[l.Description] = true
		descs = append(descs, l.Description)
	}
	if len(descs) == 0 {
		return ""
	}
	if len(descs) > maxDescriptionLines {
		extra := len(descs) - maxDescriptionLines
		return strings.Join(descs[:maxDescriptionLines], "; ") + fmt.Sprintf(" (+%d more)", extra)
	}
	return strings.Join(descs, "; ")
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone keeps digits only, retaining a leading '+'.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

// NormalizeVIN upper-cases a VIN and drops spaces and dashes.
func NormalizeVIN(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}

// IsPlaceholderVIN reports whether a VIN carries no identity: empty, a
// single repeated character (all zeros included), or a filler word.
func IsPlaceholderVIN(vin string) bool {
	vin = NormalizeVIN(vin)
	if vin == "" {
		return true
	}
	switch vin {
	case "UNKNOWN", "N/A", "NA", "NONE", "TBD":
		return true
	}
	for i := 1; i < len(vin); i++ {
		if vin[i] != vin[0] {
			return false
		}
	}
	return true
}

// cleanText trims and collapses internal whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

