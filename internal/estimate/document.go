package estimate

// ParsedDocument is the intermediate parse tree produced by a format parser.
// Every leaf holds the raw extracted text; an empty string means the source
// did not supply the field.
type ParsedDocument struct {
	Customer  CustomerSection  `json:"customer"`
	Vehicle   VehicleSection   `json:"vehicle"`
	Estimate  EstimateSection  `json:"estimate"`
	Claim     ClaimSection     `json:"claim"`
	Parts     []PartLine       `json:"parts"`
	Labor     []LaborLine      `json:"labor"`
	Financial FinancialSection `json:"financial"`
}

// CustomerSection holds the vehicle owner / insured party as found in the source.
type CustomerSection struct {
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	FullName         string `json:"full_name,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Email            string `json:"email,omitempty"`
	Address          string `json:"address,omitempty"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
	Zip              string `json:"zip,omitempty"`
	InsuranceCompany string `json:"insurance_company,omitempty"`
}

// VehicleSection holds the vehicle description.
type VehicleSection struct {
	Year         string `json:"year,omitempty"`
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	VIN          string `json:"vin,omitempty"`
	License      string `json:"license,omitempty"`
	Mileage      string `json:"mileage,omitempty"`
	Color        string `json:"color,omitempty"`
	Engine       string `json:"engine,omitempty"`
	Transmission string `json:"transmission,omitempty"`
}

// EstimateSection holds estimate header metadata.
type EstimateSection struct {
	Number    string `json:"number,omitempty"`
	Date      string `json:"date,omitempty"`
	Estimator string `json:"estimator,omitempty"`
	ShopName  string `json:"shop_name,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ClaimSection holds insurance claim metadata.
type ClaimSection struct {
	ClaimNumber      string `json:"claim_number,omitempty"`
	PolicyNumber     string `json:"policy_number,omitempty"`
	InsuranceCompany string `json:"insurance_company,omitempty"`
	AdjusterName     string `json:"adjuster_name,omitempty"`
	Deductible       string `json:"deductible,omitempty"`
	LossDate         string `json:"loss_date,omitempty"`
}

// PartLine is one part-replacement entry.
type PartLine struct {
	LineNumber    string `json:"line_number,omitempty"`
	Description   string `json:"description,omitempty"`
	PartNumber    string `json:"part_number,omitempty"`
	PartType      string `json:"part_type,omitempty"`
	Operation     string `json:"operation,omitempty"`
	Quantity      string `json:"quantity,omitempty"`
	UnitPrice     string `json:"unit_price,omitempty"`
	ExtendedPrice string `json:"extended_price,omitempty"`
}

// LaborLine is one labor-operation entry.
type LaborLine struct {
	LineNumber  string `json:"line_number,omitempty"`
	Description string `json:"description,omitempty"`
	Operation   string `json:"operation,omitempty"`
	LaborType   string `json:"labor_type,omitempty"`
	Hours       string `json:"hours,omitempty"`
	Rate        string `json:"rate,omitempty"`
	Amount      string `json:"amount,omitempty"`
}

// FinancialSection holds pre-computed aggregates supplied by the source.
type FinancialSection struct {
	PartsTotal string `json:"parts_total,omitempty"`
	LaborTotal string `json:"labor_total,omitempty"`
	TaxTotal   string `json:"tax_total,omitempty"`
	GrandTotal string `json:"grand_total,omitempty"`
}

// IsEmpty reports whether no section carries any data.
func (d *ParsedDocument) IsEmpty() bool {
	return d.Customer == (CustomerSection{}) &&
		d.Vehicle == (VehicleSection{}) &&
		d.Estimate == (EstimateSection{}) &&
		d.Claim == (ClaimSection{}) &&
		d.Financial == (FinancialSection{}) &&
		len(d.Parts) == 0 && len(d.Labor) == 0
}
