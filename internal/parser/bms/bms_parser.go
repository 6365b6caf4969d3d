// Package bms parses tag-structured (XML) collision estimates such as CIECA
// BMS exports. Elements are matched by local name, case-insensitively,
// against alias lists so that documents from different estimating systems
// land in the same intermediate shape.
package bms

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"

	"collisionos/internal/domain"
	"collisionos/internal/estimate"
	"collisionos/internal/normalize"
	"collisionos/internal/parser"
	"collisionos/internal/port"
)

func init() {
	parser.Register(domain.FileTypeBMS, func() port.DocumentParser { return NewParser() })
}

// Section aliases.
var (
	ownerSection    = []string{"Owner", "VehicleOwner", "OwnerInfo", "Customer", "CustomerInfo", "Insured", "PolicyHolder"}
	vehicleSection  = []string{"VehicleInfo", "Vehicle", "VehicleDesc", "VehicleDescription"}
	estimateSection = []string{"DocumentInfo", "EstimateInfo", "EstimateHeader", "Estimate"}
	claimSection    = []string{"ClaimInfo", "Claim", "InsuranceInfo", "PolicyInfo"}
	lineGroup       = []string{"DamageLineInfo", "LineItem", "DamageLine", "EstimateLine"}
	totalsSection   = []string{"RepairTotalsInfo", "SummaryTotalsInfo", "TotalsInfo", "Totals", "EstimateTotals"}
)

// field holds aliases for one leaf. scoped aliases are only trusted inside
// the owning section; global aliases are specific enough to search the whole
// document when the section is missing.
type field struct {
	scoped []string
	global []string
}

func (f field) in(section, root *node) string {
	if section != nil {
		if v := section.value(f.scoped...); v != "" {
			return v
		}
		return section.value(f.global...)
	}
	return root.value(f.global...)
}

var (
	customerFirst = field{[]string{"FirstName", "GivenName", "First"}, []string{"OwnerFirstName", "CustomerFirstName", "InsuredFirstName"}}
	customerLast  = field{[]string{"LastName", "Surname", "FamilyName", "Last"}, []string{"OwnerLastName", "CustomerLastName", "InsuredLastName"}}
	customerFull  = field{[]string{"FullName", "Name", "CompanyName"}, []string{"OwnerName", "CustomerName", "InsuredName"}}
	customerPhone = field{[]string{"CommPhone", "Phone", "PhoneNumber", "HomePhone", "CellPhone", "DayPhone", "Telephone"}, []string{"OwnerPhone", "CustomerPhone"}}
	customerEmail = field{[]string{"CommEmail", "Email", "EmailAddress", "EMail"}, []string{"OwnerEmail", "CustomerEmail"}}
	customerAddr  = field{[]string{"Address1", "Street", "StreetAddress", "Address", "AddressLine1"}, []string{"OwnerAddress", "CustomerAddress"}}
	customerCity  = field{[]string{"City"}, []string{"OwnerCity", "CustomerCity"}}
	customerState = field{[]string{"StateProvince", "State", "Province"}, []string{"OwnerState", "CustomerState"}}
	customerZip   = field{[]string{"PostalCode", "Zip", "ZipCode"}, []string{"OwnerZip", "OwnerPostalCode", "CustomerZip"}}

	vehicleYear  = field{[]string{"ModelYear", "Year", "VehicleYear"}, []string{"VehicleYear", "ModelYear"}}
	vehicleMake  = field{[]string{"MakeDesc", "Make", "VehicleMake", "MakeCode"}, []string{"VehicleMake", "MakeDesc"}}
	vehicleModel = field{[]string{"ModelName", "Model", "ModelDesc", "VehicleModel"}, []string{"VehicleModel", "ModelName"}}
	vehicleVIN   = field{[]string{"VINNum", "VIN", "VehicleIdentificationNumber"}, []string{"VINNum", "VIN", "VehicleIdentificationNumber"}}
	vehiclePlate = field{[]string{"LicensePlateNum", "LicensePlate", "License", "PlateNumber"}, []string{"LicensePlateNum", "LicensePlate"}}
	vehicleMiles = field{[]string{"OdometerReading", "Odometer", "Mileage", "OdometerReadingIn"}, []string{"OdometerReading", "Odometer", "Mileage"}}
	vehicleColor = field{[]string{"ColorName", "Color", "ExteriorColor", "PaintColor"}, []string{"ExteriorColor", "VehicleColor"}}
	vehicleEng   = field{[]string{"EngineDesc", "Engine", "EngineCode"}, []string{"EngineDesc"}}
	vehicleTrans = field{[]string{"TransmissionDesc", "Transmission", "TransmissionCode"}, []string{"TransmissionDesc"}}

	estimateNumber    = field{[]string{"EstimateNumber", "EstimateNum", "EstimateID", "DocumentID", "RONumber"}, []string{"EstimateNumber", "EstimateNum", "EstimateID", "DocumentID"}}
	estimateDate      = field{[]string{"EstimateDate", "CreateDateTime", "DocumentDate", "Date"}, []string{"EstimateDate", "CreateDateTime"}}
	estimateEstimator = field{[]string{"EstimatorName", "Estimator", "Appraiser", "AppraiserName"}, []string{"EstimatorName", "Estimator"}}
	estimateShop      = field{[]string{"ShopName", "RepairFacilityName", "BodyShopName", "RepairFacility"}, []string{"ShopName", "RepairFacilityName", "BodyShopName"}}
	estimateVersion   = field{[]string{"DocumentVer", "VersionNum", "Version", "BMSVer"}, []string{"DocumentVer", "BMSVer"}}

	claimNumber     = field{[]string{"ClaimNum", "ClaimNumber", "ClaimID"}, []string{"ClaimNum", "ClaimNumber"}}
	claimPolicy     = field{[]string{"PolicyNum", "PolicyNumber", "PolicyID"}, []string{"PolicyNum", "PolicyNumber"}}
	claimInsurer    = field{[]string{"InsuranceCompany", "InsCoName", "InsurerName", "CarrierName", "InsuranceCarrier", "CompanyName"}, []string{"InsuranceCompany", "InsCoName", "InsurerName", "CarrierName", "InsuranceCarrier"}}
	claimAdjuster   = field{[]string{"AdjusterName", "Adjuster"}, []string{"AdjusterName"}}
	claimDeductible = field{[]string{"DeductibleAmt", "Deductible", "DedAmt"}, []string{"DeductibleAmt", "Deductible"}}
	claimLossDate   = field{[]string{"LossDate", "LossDateTime", "DateOfLoss"}, []string{"LossDate", "LossDateTime", "DateOfLoss"}}
)

// Parser parses BMS XML documents.
type Parser struct{}

// NewParser creates a BMS parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse builds a ParsedDocument from XML content. It fails only when the
// content is empty, not well-formed, or carries no recognised section.
func (p *Parser) Parse(content []byte) (*estimate.ParsedDocument, error) {
	content = bytes.TrimSpace(parser.StripBOM(content))
	if len(content) == 0 {
		return nil, parser.NewMalformedDocumentError(domain.FileTypeBMS, "empty content", domain.ErrEmptyContent)
	}

	root, err := buildTree(content)
	if err != nil {
		return nil, parser.NewMalformedDocumentError(domain.FileTypeBMS, "not well-formed XML", err)
	}

	owner := root.find(ownerSection...)
	vehicle := root.find(vehicleSection...)
	header := root.find(estimateSection...)
	claim := root.find(claimSection...)
	groups := root.collect(lineGroup...)
	totals := root.find(totalsSection...)

	if owner == nil && vehicle == nil && header == nil && claim == nil && len(groups) == 0 && totals == nil {
		return nil, parser.NewMalformedDocumentError(domain.FileTypeBMS, "no recognised estimate section", nil)
	}

	doc := &estimate.ParsedDocument{
		Customer: parseCustomer(owner, root),
		Vehicle:  parseVehicle(vehicle, root),
		Estimate: parseEstimate(header, root),
		Claim:    parseClaim(claim, root),
	}
	if doc.Customer.InsuranceCompany == "" {
		doc.Customer.InsuranceCompany = doc.Claim.InsuranceCompany
	}
	for _, g := range groups {
		part, labor := parseLine(g)
		if part != nil {
			doc.Parts = append(doc.Parts, *part)
		}
		if labor != nil {
			doc.Labor = append(doc.Labor, *labor)
		}
	}
	doc.Financial = parseTotals(totals, root)

	return doc, nil
}

func parseCustomer(owner, root *node) estimate.CustomerSection {
	return estimate.CustomerSection{
		FirstName: customerFirst.in(owner, root),
		LastName:  customerLast.in(owner, root),
		FullName:  customerFull.in(owner, root),
		Phone:     customerPhone.in(owner, root),
		Email:     customerEmail.in(owner, root),
		Address:   customerAddr.in(owner, root),
		City:      customerCity.in(owner, root),
		State:     customerState.in(owner, root),
		Zip:       customerZip.in(owner, root),
	}
}

func parseVehicle(vehicle, root *node) estimate.VehicleSection {
	return estimate.VehicleSection{
		Year:         vehicleYear.in(vehicle, root),
		Make:         vehicleMake.in(vehicle, root),
		Model:        vehicleModel.in(vehicle, root),
		VIN:          vehicleVIN.in(vehicle, root),
		License:      vehiclePlate.in(vehicle, root),
		Mileage:      vehicleMiles.in(vehicle, root),
		Color:        vehicleColor.in(vehicle, root),
		Engine:       vehicleEng.in(vehicle, root),
		Transmission: vehicleTrans.in(vehicle, root),
	}
}

func parseEstimate(header, root *node) estimate.EstimateSection {
	e := estimate.EstimateSection{
		Number:    estimateNumber.in(header, root),
		Date:      estimateDate.in(header, root),
		Estimator: estimateEstimator.in(header, root),
		ShopName:  estimateShop.in(header, root),
		Version:   estimateVersion.in(header, root),
	}
	if e.Estimator == "" {
		e.Estimator = partyName(root.find("Estimator", "Appraiser"))
	}
	if e.ShopName == "" {
		e.ShopName = partyName(root.find("RepairFacility", "BodyShop"))
	}
	return e
}

func parseClaim(claim, root *node) estimate.ClaimSection {
	c := estimate.ClaimSection{
		ClaimNumber:      claimNumber.in(claim, root),
		PolicyNumber:     claimPolicy.in(claim, root),
		InsuranceCompany: claimInsurer.in(claim, root),
		AdjusterName:     claimAdjuster.in(claim, root),
		Deductible:       claimDeductible.in(claim, root),
		LossDate:         claimLossDate.in(claim, root),
	}
	// CIECA nests the carrier and adjuster as parties.
	if c.InsuranceCompany == "" {
		c.InsuranceCompany = partyName(root.find("InsuranceCompany", "Insurer"))
	}
	if c.AdjusterName == "" {
		c.AdjusterName = partyName(root.find("ClaimRep", "Adjuster"))
	}
	return c
}

// partyName renders the organisation or person name held by a party node.
func partyName(party *node) string {
	if party == nil {
		return ""
	}
	if org := party.value("CompanyName", "OrgName"); org != "" {
		return org
	}
	first, last := party.value("FirstName"), party.value("LastName")
	return strings.TrimSpace(first + " " + last)
}

var (
	partInfo  = []string{"PartInfo", "PartDetail", "Part"}
	laborInfo = []string{"LaborInfo", "LaborDetail", "Labor"}

	lineNumber = []string{"LineNum", "LineNumber", "LineNo", "UniqueSequenceNum"}
	lineDesc   = []string{"LineDesc", "Description", "LineDescription"}

	partNumber   = []string{"PartNum", "OEMPartNum", "PartNumber"}
	partPrice    = []string{"PartPrice", "UnitPrice", "ActualPrice", "Price"}
	partQty      = []string{"Quantity", "Qty", "PartQty"}
	partType     = []string{"PartType", "PartSourceCode"}
	partDesc     = []string{"PartDesc", "PartDescription"}
	partExt      = []string{"ExtendedPrice", "PartExtendedPrice", "PartExtendedAmt", "PartAmt"}
	partExtInner = []string{"ExtendedAmt", "Amount", "Total"}

	laborOp       = []string{"LaborOperation", "LaborOp", "Operation", "OpCode"}
	laborType     = []string{"LaborType", "LaborCategory"}
	laborHours    = []string{"LaborHours", "ActualHours", "Hours", "DBLaborHours"}
	laborRate     = []string{"LaborRate", "HourlyRate", "Rate"}
	laborDesc     = []string{"LaborDesc", "LaborDescription"}
	laborExt      = []string{"LaborAmt", "LaborAmount", "LaborExtendedAmt"}
	laborExtInner = []string{"ExtendedAmt", "Amount", "Total"}

	lineOperation = []string{"LineOperation", "PartOperation", "OperationCode"}
)

// parseLine turns one damage line group into a part line, a labor line, or
// both when the group carries both kinds of data.
func parseLine(g *node) (*estimate.PartLine, *estimate.LaborLine) {
	num := g.value(lineNumber...)
	if num == "" {
		num = g.attrs["linenum"]
	}
	desc := g.value(lineDesc...)

	var part *estimate.PartLine
	pScope := g.child(partInfo...)
	if pScope != nil || g.value(partNumber...) != "" || g.value(partPrice...) != "" || g.value(partQty...) != "" {
		scope := pScope
		if scope == nil {
			scope = g
		}
		part = &estimate.PartLine{
			LineNumber:    num,
			Description:   firstNonEmpty(scope.value(partDesc...), desc),
			PartNumber:    scope.value(partNumber...),
			PartType:      scope.value(partType...),
			Operation:     g.value(lineOperation...),
			Quantity:      scope.value(partQty...),
			UnitPrice:     scope.value(partPrice...),
			ExtendedPrice: scope.value(partExt...),
		}
		if part.ExtendedPrice == "" && pScope != nil {
			part.ExtendedPrice = pScope.value(partExtInner...)
		}
	}

	var labor *estimate.LaborLine
	lScope := g.child(laborInfo...)
	if lScope != nil || g.value(laborHours...) != "" || g.value(laborRate...) != "" || g.value(laborExt...) != "" {
		scope := lScope
		if scope == nil {
			scope = g
		}
		labor = &estimate.LaborLine{
			LineNumber:  num,
			Description: firstNonEmpty(scope.value(laborDesc...), desc),
			Operation:   scope.value(laborOp...),
			LaborType:   scope.value(laborType...),
			Hours:       scope.value(laborHours...),
			Rate:        scope.value(laborRate...),
			Amount:      scope.value(laborExt...),
		}
		if labor.Amount == "" && lScope != nil {
			labor.Amount = lScope.value(laborExtInner...)
		}
	}

	return part, labor
}

var (
	totalTypeCodes = map[string]string{
		"PA": "parts", "PAT": "parts", "PAA": "parts", "PARTS": "parts",
		"LA": "labor", "LAT": "labor", "LAB": "labor", "LABOR": "labor",
		"TX": "tax", "TAX": "tax", "STX": "tax",
		"GT": "grand", "TOT": "grand", "GRAND": "grand", "TOTAL": "grand",
	}
	totalAmount = []string{"TotalAmt", "TotalAmount", "Amount", "Amt"}

	directParts = []string{"PartsTotal", "TotalParts", "PartsTotalAmt"}
	directLabor = []string{"LaborTotal", "TotalLabor", "LaborTotalAmt"}
	directTax   = []string{"TaxTotal", "TotalTax", "SalesTax", "TaxAmt"}
	directGrand = []string{"GrandTotal", "GrandTotalAmt", "NetTotal", "EstimateTotal"}
)

// totalKind maps a TotalType code to an aggregate. Part subtypes start with
// PA and labor subtypes (body, refinish, frame, mechanical) with LA.
func totalKind(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if kind, ok := totalTypeCodes[code]; ok {
		return kind, true
	}
	switch {
	case strings.HasPrefix(code, "PA"):
		return "parts", true
	case strings.HasPrefix(code, "LA"):
		return "labor", true
	}
	return "", false
}

func parseTotals(totals, root *node) estimate.FinancialSection {
	scope := totals
	if scope == nil {
		scope = root
	}

	// Coded entries: the parent of each TotalType element carries the amount.
	// Several entries of one kind add up.
	coded := make(map[string]decimal.Decimal)
	var walk func(*node)
	walk = func(n *node) {
		if tt := n.child("TotalType"); tt != nil {
			if kind, ok := totalKind(tt.text); ok {
				if amount := n.value(totalAmount...); amount != "" {
					coded[kind] = coded[kind].Add(normalize.ParseAmount(amount))
				}
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(scope)

	pick := func(kind string, direct []string) string {
		if sum, ok := coded[kind]; ok {
			return sum.StringFixed(2)
		}
		return scope.value(direct...)
	}
	return estimate.FinancialSection{
		PartsTotal: pick("parts", directParts),
		LaborTotal: pick("labor", directLabor),
		TaxTotal:   pick("tax", directTax),
		GrandTotal: pick("grand", directGrand),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
