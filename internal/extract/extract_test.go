package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCustomersFromDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CustomersFile,
		"customer_id,first_name,last_name,gender,age,city,state,membership_level\n"+
			"1,Ada,Lovelace,Female,36,London,,Gold\n"+
			"2, Alan ,Turing,Male,not-a-number,Wilmslow,Cheshire,Silver\n")

	rows, err := Customers(t.Context(), &DirSource{Dir: dir})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Everything stays a raw string, including blanks, whitespace and
	// unparseable cells.
	assert.Equal(t, "1", rows[0].CustomerID)
	assert.Equal(t, "Ada", rows[0].FirstName)
	assert.Equal(t, "", rows[0].State)
	assert.Equal(t, " Alan ", rows[1].FirstName)
	assert.Equal(t, "not-a-number", rows[1].Age)
}

func TestSalesFromDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SalesFile,
		"sales_id,customer_id,product_id,store_id,quantity,sales_date,discount_pct,unit_price,total_amount\n"+
			"10,1,2,3,2,25-12-2022,10,199.90,359.82\n")

	rows, err := Sales(t.Context(), &DirSource{Dir: dir})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "25-12-2022", rows[0].SalesDate)
	assert.Equal(t, "199.90", rows[0].UnitPrice)
	assert.Equal(t, "359.82", rows[0].TotalAmount)
}

func TestReadAllReportsRowNumber(t *testing.T) {
	dir := t.TempDir()
	// Row 3 has a ragged record (too few fields).
	writeFile(t, dir, StoresFile,
		"store_id,store_name,city,state,region,store_type\n"+
			"1,Main,Austin,TX,South,Flagship\n"+
			"2,Short\n")

	_, err := Stores(t.Context(), &DirSource{Dir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Products(t.Context(), &DirSource{Dir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ProductsFile)
}

func TestNewSourceSelection(t *testing.T) {
	ctx := t.Context()

	src, err := NewSource(ctx, "./data")
	require.NoError(t, err)
	_, ok := src.(*DirSource)
	assert.True(t, ok, "plain path gives a directory source")

	_, err = NewSource(ctx, "s3://")
	assert.Error(t, err, "S3 URL without a bucket is rejected")
}

func TestS3SourceLocation(t *testing.T) {
	s := &S3Source{bucket: "exports", prefix: "daily/2026-08"}
	assert.Equal(t, "s3://exports/daily/2026-08/sales.csv", s.Location(SalesFile))

	s = &S3Source{bucket: "exports"}
	assert.Equal(t, "s3://exports/sales.csv", s.Location(SalesFile))
}
