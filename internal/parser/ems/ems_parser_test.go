package ems_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collisionos/internal/domain"
	"collisionos/internal/parser"
	"collisionos/internal/parser/ems"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestParse_PipeDelimitedKeyValue(t *testing.T) {
	doc, err := ems.NewParser().Parse(loadFixture(t, "estimate_pipe.ems"))
	require.NoError(t, err)

	assert.Equal(t, "E-1001", doc.Estimate.Number)
	assert.Equal(t, "2024-05-02", doc.Estimate.Date)
	assert.Equal(t, "Pat Kim", doc.Estimate.Estimator)
	assert.Equal(t, "Eastside Collision", doc.Estimate.ShopName)

	assert.Equal(t, "Jane", doc.Customer.FirstName)
	assert.Equal(t, "Doe", doc.Customer.LastName)
	assert.Equal(t, "(555) 010-2000", doc.Customer.Phone)
	assert.Equal(t, "Jane.Doe@Example.COM", doc.Customer.Email)
	assert.Equal(t, "9 Oak Ave", doc.Customer.Address)
	assert.Equal(t, "Dayton", doc.Customer.City)
	assert.Equal(t, "OH", doc.Customer.State)
	assert.Equal(t, "45402", doc.Customer.Zip)
	assert.Equal(t, "Granite Insurance", doc.Customer.InsuranceCompany)

	assert.Equal(t, "2020", doc.Vehicle.Year)
	assert.Equal(t, "Toyota", doc.Vehicle.Make)
	assert.Equal(t, "Camry", doc.Vehicle.Model)
	assert.Equal(t, "4T1B11HK5LU000001", doc.Vehicle.VIN)
	assert.Equal(t, "XYZ987", doc.Vehicle.License)
	assert.Equal(t, "31,000", doc.Vehicle.Mileage)
	assert.Equal(t, "Blue", doc.Vehicle.Color)

	assert.Equal(t, "C-42", doc.Claim.ClaimNumber)
	assert.Equal(t, "P-9", doc.Claim.PolicyNumber)
	assert.Equal(t, "Granite Insurance", doc.Claim.InsuranceCompany)
	assert.Equal(t, "Lee Park", doc.Claim.AdjusterName)
	assert.Equal(t, "250", doc.Claim.Deductible)
	assert.Equal(t, "2024-04-28", doc.Claim.LossDate)

	require.Len(t, doc.Parts, 2)
	assert.Equal(t, "Rear bumper cover", doc.Parts[0].Description)
	assert.Equal(t, "52159-06987", doc.Parts[0].PartNumber)
	assert.Equal(t, "$100.00", doc.Parts[0].UnitPrice)
	assert.Equal(t, "2", doc.Parts[1].Quantity)

	require.Len(t, doc.Labor, 1)
	assert.Equal(t, "3", doc.Labor[0].LineNumber)
	assert.Equal(t, "R&I bumper", doc.Labor[0].Description)
	assert.Equal(t, "2", doc.Labor[0].Hours)
	assert.Equal(t, "60", doc.Labor[0].Rate)

	assert.Equal(t, "", doc.Financial.GrandTotal)
}

func TestParse_TabDelimitedPositional(t *testing.T) {
	doc, err := ems.NewParser().Parse(loadFixture(t, "estimate_tab.ems"))
	require.NoError(t, err)

	assert.Equal(t, "2018", doc.Vehicle.Year)
	assert.Equal(t, "Mazda", doc.Vehicle.Make)
	assert.Equal(t, "CX-5", doc.Vehicle.Model)
	assert.Equal(t, "JM3KFBCM1J0000001", doc.Vehicle.VIN)

	require.Len(t, doc.Parts, 1)
	assert.Equal(t, "Hood", doc.Parts[0].Description)
	assert.Empty(t, doc.Parts[0].PartNumber)
	assert.Equal(t, "1", doc.Parts[0].Quantity)
	assert.Equal(t, "450.00", doc.Parts[0].UnitPrice)

	require.Len(t, doc.Labor, 1)
	assert.Equal(t, "REF", doc.Labor[0].Operation)
	assert.Equal(t, "3.5", doc.Labor[0].Hours)
	assert.Equal(t, "48", doc.Labor[0].Rate)
}

func TestParse_CommaDelimitedWithQuotesAndTotals(t *testing.T) {
	content := []byte("OWNER,\"name=Smith, John\",tel=555 111 2222\nTOT,parts=1,200.00\nTTL,tax=12.50,grand=300\n")

	doc, err := ems.NewParser().Parse(content)
	require.NoError(t, err)

	assert.Equal(t, "Smith, John", doc.Customer.FullName)
	assert.Equal(t, "555 111 2222", doc.Customer.Phone)
	assert.Equal(t, "1,200.00", doc.Financial.PartsTotal)
	assert.Equal(t, "12.50", doc.Financial.TaxTotal)
	assert.Equal(t, "300", doc.Financial.GrandTotal)
}

func TestParse_CommaDelimitedThousandsSeparator(t *testing.T) {
	content := []byte("OWNER,fname=Ann,lname=Lee\nPART,desc=Hood,qty=1,price=1,250.00\nPART,desc=Grille,price=2,000,qty=2\n")

	doc, err := ems.NewParser().Parse(content)
	require.NoError(t, err)

	require.Len(t, doc.Parts, 2)
	assert.Equal(t, "Hood", doc.Parts[0].Description)
	assert.Equal(t, "1", doc.Parts[0].Quantity)
	assert.Equal(t, "1,250.00", doc.Parts[0].UnitPrice)
	assert.Empty(t, doc.Parts[0].LineNumber)

	assert.Equal(t, "2,000", doc.Parts[1].UnitPrice)
	assert.Equal(t, "2", doc.Parts[1].Quantity)
}

func TestParse_FirstValueWins(t *testing.T) {
	content := []byte("CUST|fname=Ann\nCUST|fname=Bob|lname=Lee\n")

	doc, err := ems.NewParser().Parse(content)
	require.NoError(t, err)
	assert.Equal(t, "Ann", doc.Customer.FirstName)
	assert.Equal(t, "Lee", doc.Customer.LastName)
}

func TestParse_Windows1252(t *testing.T) {
	content := append([]byte("CUST|lname=Pe"), 0xF1, 'a')

	doc, err := ems.NewParser().Parse(content)
	require.NoError(t, err)
	assert.Equal(t, "Peña", doc.Customer.LastName)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"only comments", "# header\n# nothing here\n"},
		{"unknown records", "FOO|a=1\nBAR|b=2\n"},
	}

	p := ems.NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := p.Parse([]byte(tt.content))
			assert.Nil(t, doc)

			var malformed *parser.MalformedDocumentError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, domain.FileTypeEMS, malformed.Format)
			assert.ErrorIs(t, err, domain.ErrMalformedDocument)
		})
	}
}

func TestRegisteredInFactory(t *testing.T) {
	p, err := parser.New(domain.FileTypeEMS)
	require.NoError(t, err)
	assert.IsType(t, &ems.Parser{}, p)
}
