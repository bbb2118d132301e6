//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package transform

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailops/retail-etl/internal/extract"
)

// Customers cleans raw customer rows: names are trimmed, the age must
// parse and fall within [18, 100]. Returns the kept rows and the number
// dropped.
func Customers(raw []extract.RawCustomer) ([]Customer, int) {
	out := make([]Customer, 0, len(raw))
	dropped := 0

	for _, r := range raw {
		id, ok := parseID(r.CustomerID)
		if !ok {
			dropped++
			continue
		}
		age, ok := parseInt(r.Age)
		if !ok || age < minAge || age > maxAge {
			dropped++
			continue
		}
		out = append(out, Customer{
			CustomerID:      id,
			FirstName:       trim(r.FirstName),
			LastName:        trim(r.LastName),
			Gender:          trim(r.Gender),
			Age:             age,
			City:            trim(r.City),
			State:           trim(r.State),
			MembershipLevel: trim(r.MembershipLevel),
		})
	}
	return out, dropped
}

// Products cleans raw product rows: price and cost must parse and the
// cost must be below the price.
func Products(raw []extract.RawProduct) ([]Product, int) {
	out := make([]Product, 0, len(raw))
	dropped := 0

	for _, r := range raw {
		id, ok := parseID(r.ProductID)
		if !ok {
			dropped++
			continue
		}
		price, okP := parseDecimal(r.Price)
		cost, okC := parseDecimal(r.Cost)
		if !okP || !okC || !cost.LessThan(price) {
			dropped++
			continue
		}
		out = append(out, Product{
			ProductID:   id,
			ProductName: trim(r.ProductName),
			Category:    trim(r.Category),
			SubCategory: trim(r.SubCategory),
			Brand:       trim(r.Brand),
			Price:       price,
			Cost:        cost,
			Color:       trim(r.Color),
			SizeLabel:   trim(r.Size),
		})
	}
	return out, dropped
}

// Stores cleans raw store rows. Only the store name needs normalizing.
func Stores(raw []extract.RawStore) ([]Store, int) {
	out := make([]Store, 0, len(raw))
	dropped := 0

	for _, r := range raw {
		id, ok := parseID(r.StoreID)
		if !ok {
			dropped++
			continue
		}
		out = append(out, Store{
			StoreID:   id,
			StoreName: trim(r.StoreName),
			City:      trim(r.City),
			State:     trim(r.State),
			Region:    trim(r.Region),
			StoreType: trim(r.StoreType),
		})
	}
	return out, dropped
}

// Sales cleans raw sale rows and computes the derived columns. A sale is
// dropped when its identifiers, date, quantity or unit price do not parse,
// when the quantity is not positive, or when it references a product that
// did not survive cleaning (the cost would be unknowable). A missing or
// malformed discount defaults to zero.
//
// Derived columns, rounded to 2 decimal places:
//
//	revenue      = quantity * unit_price
//	total_amount = revenue * (1 - discount_pct/100)
//	profit       = revenue - quantity * cost
//
// The total_amount column of the CSV is deliberately ignored.
func Sales(raw []extract.RawSale, products []Product) ([]Sale, int) {
	costByProduct := make(map[int64]decimal.Decimal, len(products))
	for _, p := range products {
		costByProduct[p.ProductID] = p.Cost
	}

	out := make([]Sale, 0, len(raw))
	dropped := 0

	for _, r := range raw {
		salesID, ok1 := parseID(r.SalesID)
		customerID, ok2 := parseID(r.CustomerID)
		productID, ok3 := parseID(r.ProductID)
		storeID, ok4 := parseID(r.StoreID)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			dropped++
			continue
		}

		soldAt, ok := parseDayFirstDate(r.SalesDate)
		if !ok {
			dropped++
			continue
		}

		qty, ok := parseInt(r.Quantity)
		if !ok || qty <= 0 {
			dropped++
			continue
		}

		unitPrice, ok := parseDecimal(r.UnitPrice)
		if !ok {
			dropped++
			continue
		}

		cost, ok := costByProduct[productID]
		if !ok {
			dropped++
			continue
		}

		discount, ok := parseDecimal(r.DiscountPct)
		if !ok {
			discount = decimal.Zero
		}

		qtyDec := decimal.NewFromInt(int64(qty))
		revenue := unitPrice.Mul(qtyDec).Round(2)
		total := revenue.Mul(decimal.NewFromInt(1).Sub(discount.Div(oneHundred))).Round(2)
		profit := revenue.Sub(cost.Mul(qtyDec)).Round(2)

		out = append(out, Sale{
			SalesID:     salesID,
			CustomerID:  customerID,
			ProductID:   productID,
			StoreID:     storeID,
			DateKey:     DateKey(soldAt),
			SoldAt:      soldAt,
			Quantity:    qty,
			UnitPrice:   unitPrice,
			DiscountPct: discount,
			Revenue:     revenue,
			TotalAmount: total,
			Profit:      profit,
		})
	}
	return out, dropped
}

// DateRows derives the distinct date-dimension rows referenced by the
// cleaned sales, sorted by key.
func DateRows(sales []Sale) []DateRow {
	seen := make(map[int]DateRow)
	for _, s := range sales {
		if _, ok := seen[s.DateKey]; ok {
			continue
		}
		d := s.SoldAt
		seen[s.DateKey] = DateRow{
			DateKey:      s.DateKey,
			CalendarDate: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
			Day:          d.Day(),
			Month:        int(d.Month()),
			Year:         d.Year(),
			Quarter:      Quarter(d),
			Weekday:      ISOWeekday(d),
		}
	}

	rows := make([]DateRow, 0, len(seen))
	for _, r := range seen {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].DateKey < rows[j].DateKey })
	return rows
}
