package warehouse

import (
	"fmt"

	"github.com/retailops/retail-etl/internal/transform"
)

// resolveFactRows maps each sale's natural keys to the surrogate keys of
// the loaded dimensions and shapes the staging rows. A sale referencing a
// missing dimension row is an error: dimensions load before facts, so a
// miss means the input violated referential integrity.
func resolveFactRows(
	sales []transform.Sale,
	customerKeys, productKeys, storeKeys map[int64]int32,
	dateKeys map[int]struct{},
) ([][]any, error) {
	rows := make([][]any, len(sales))
	for i, s := range sales {
		customerKey, ok := customerKeys[s.CustomerID]
		if !ok {
			return nil, fmt.Errorf("sale %d references unknown customer_id %d", s.SalesID, s.CustomerID)
		}
		productKey, ok := productKeys[s.ProductID]
		if !ok {
			return nil, fmt.Errorf("sale %d references unknown product_id %d", s.SalesID, s.ProductID)
		}
		storeKey, ok := storeKeys[s.StoreID]
		if !ok {
			return nil, fmt.Errorf("sale %d references unknown store_id %d", s.SalesID, s.StoreID)
		}
		if _, ok := dateKeys[s.DateKey]; !ok {
			return nil, fmt.Errorf("sale %d references unknown date_key %d", s.SalesID, s.DateKey)
		}

		rows[i] = []any{s.SalesID, customerKey, productKey, storeKey, s.DateKey,
			s.Quantity, s.UnitPrice, s.DiscountPct, s.TotalAmount, s.Revenue, s.Profit}
	}
	return rows, nil
}
