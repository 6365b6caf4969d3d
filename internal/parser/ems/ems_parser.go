// Package ems parses flat delimited-text collision estimates. Each line is
// one record: a record type followed by key=value fields (or positional
// values in the record type's default column order).
package ems

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"strings"

	"collisionos/internal/domain"
	"collisionos/internal/estimate"
	"collisionos/internal/parser"
	"collisionos/internal/port"
)

func init() {
	parser.Register(domain.FileTypeEMS, func() port.DocumentParser { return NewParser() })
}

// Parser parses EMS delimited-text documents.
type Parser struct{}

// NewParser creates an EMS parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse builds a ParsedDocument from delimited text. It fails only when the
// content is empty or no line carries a recognised record type.
func (p *Parser) Parse(content []byte) (*estimate.ParsedDocument, error) {
	content = bytes.TrimSpace(parser.ToUTF8(parser.StripBOM(content)))
	if len(content) == 0 {
		return nil, parser.NewMalformedDocumentError(domain.FileTypeEMS, "empty content", domain.ErrEmptyContent)
	}

	lines := splitLines(content)
	delim := detectDelimiter(lines)

	doc := &estimate.ParsedDocument{}
	recognised := 0
	for _, line := range lines {
		fields := splitFields(line, delim)
		if len(fields) == 0 {
			continue
		}
		kind, ok := recordTypes[strings.ToUpper(strings.TrimSpace(fields[0]))]
		if !ok {
			continue
		}
		recognised++
		apply(doc, kind, mapFields(kind, fields[1:], delim))
	}

	if recognised == 0 {
		return nil, parser.NewMalformedDocumentError(domain.FileTypeEMS, "no recognised record type", nil)
	}
	fill(&doc.Customer.InsuranceCompany, doc.Claim.InsuranceCompany)
	fill(&doc.Claim.InsuranceCompany, doc.Customer.InsuranceCompany)
	return doc, nil
}

// splitLines returns the non-blank, non-comment lines of content.
func splitLines(content []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

var delimiters = []rune{'|', '\t', ','}

// detectDelimiter picks the candidate that occurs most often across the
// first few lines. Ties go to the earlier candidate.
func detectDelimiter(lines []string) rune {
	sample := lines
	if len(sample) > 10 {
		sample = sample[:10]
	}
	best, bestCount := delimiters[0], 0
	for _, d := range delimiters {
		n := 0
		for _, l := range sample {
			n += strings.Count(l, string(d))
		}
		if n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func splitFields(line string, delim rune) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rec, err := r.Read()
	if err != nil {
		rec = strings.Split(line, string(delim))
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	return rec
}

// mapFields resolves key=value pairs through the record's alias table and
// assigns bare values to the record's default columns in order. Once a keyed
// fragment has been seen, a bare fragment continues the previous value: the
// delimiter split it, as in "price=1,250.00" on a comma-delimited file.
func mapFields(kind recordKind, raw []string, delim rune) map[string]string {
	out := make(map[string]string, len(raw))
	aliases := fieldAliases[kind]
	positions := positionalColumns[kind]
	pos := 0
	keyed := false
	lastKey := ""

	for _, f := range raw {
		if key, val, ok := strings.Cut(f, "="); ok {
			keyed = true
			lastKey = ""
			canonical, known := aliases[normalizeKey(key)]
			if !known {
				continue
			}
			val = strings.TrimSpace(val)
			if _, seen := out[canonical]; !seen && val != "" {
				out[canonical] = val
				lastKey = canonical
			}
			continue
		}
		if keyed {
			if lastKey != "" && f != "" {
				out[lastKey] += string(delim) + f
			}
			continue
		}
		if pos < len(positions) {
			if _, seen := out[positions[pos]]; !seen && f != "" {
				out[positions[pos]] = f
			}
		}
		pos++
	}
	return out
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(k)
	return k
}

// fill sets *dst only when it is still empty so the first value wins.
func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func apply(doc *estimate.ParsedDocument, kind recordKind, f map[string]string) {
	switch kind {
	case recordCustomer:
		c := &doc.Customer
		fill(&c.FirstName, f["first_name"])
		fill(&c.LastName, f["last_name"])
		fill(&c.FullName, f["full_name"])
		fill(&c.Phone, f["phone"])
		fill(&c.Email, f["email"])
		fill(&c.Address, f["address"])
		fill(&c.City, f["city"])
		fill(&c.State, f["state"])
		fill(&c.Zip, f["zip"])
		fill(&c.InsuranceCompany, f["insurance_company"])
	case recordVehicle:
		v := &doc.Vehicle
		fill(&v.Year, f["year"])
		fill(&v.Make, f["make"])
		fill(&v.Model, f["model"])
		fill(&v.VIN, f["vin"])
		fill(&v.License, f["license"])
		fill(&v.Mileage, f["mileage"])
		fill(&v.Color, f["color"])
		fill(&v.Engine, f["engine"])
		fill(&v.Transmission, f["transmission"])
	case recordEstimate:
		e := &doc.Estimate
		fill(&e.Number, f["estimate_number"])
		fill(&e.Date, f["estimate_date"])
		fill(&e.Estimator, f["estimator"])
		fill(&e.ShopName, f["shop_name"])
		fill(&e.Version, f["version"])
	case recordClaim:
		c := &doc.Claim
		fill(&c.ClaimNumber, f["claim_number"])
		fill(&c.PolicyNumber, f["policy_number"])
		fill(&c.InsuranceCompany, f["insurance_company"])
		fill(&c.AdjusterName, f["adjuster"])
		fill(&c.Deductible, f["deductible"])
		fill(&c.LossDate, f["loss_date"])
	case recordPart:
		doc.Parts = append(doc.Parts, estimate.PartLine{
			LineNumber:    f["line"],
			Description:   f["description"],
			PartNumber:    f["part_number"],
			PartType:      f["part_type"],
			Operation:     f["operation"],
			Quantity:      f["quantity"],
			UnitPrice:     f["unit_price"],
			ExtendedPrice: f["extended_price"],
		})
	case recordLabor:
		doc.Labor = append(doc.Labor, estimate.LaborLine{
			LineNumber:  f["line"],
			Description: f["description"],
			Operation:   f["operation"],
			LaborType:   f["labor_type"],
			Hours:       f["hours"],
			Rate:        f["rate"],
			Amount:      f["amount"],
		})
	case recordTotals:
		t := &doc.Financial
		fill(&t.PartsTotal, f["parts_total"])
		fill(&t.LaborTotal, f["labor_total"])
		fill(&t.TaxTotal, f["tax_total"])
		fill(&t.GrandTotal, f["grand_total"])
	}
}
