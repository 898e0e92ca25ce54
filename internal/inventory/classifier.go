package inventory

import (
	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// Classify derives the stock status from on-hand stock and the reorder level.
// Zero stock always wins, even when the reorder level is also zero.
func Classify(stock, reorderLevel int) enums.StockStatus {
	switch {
	case stock == 0:
		return enums.StockStatusOutOfStock
	case stock <= reorderLevel:
		return enums.StockStatusLowStock
	default:
		return enums.StockStatusInStock
	}
}
