package cart

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one cart entry: a product/variant combination and its quantity.
// UnitPrice is captured at add time and never refreshed, even if the catalog
// price changes later.
type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Scent     string          `json:"scent,omitempty"`
	Image     string          `json:"image,omitempty"`
	IsCustom  bool            `json:"isCustom,omitempty"`
}

// ItemKey is the identity tuple that decides whether two additions refer to
// the same line item.
type ItemKey struct {
	ID    string
	Size  string
	Scent string
}

// Category-specific size defaults applied when an addition omits size.
var defaultSizes = map[string]string{
	"candles": "8oz",
}

const fallbackSize = "Standard"

// KeyFor normalizes the identity tuple for a line item. A missing size falls
// back to the category default so that "add with size" and "add without size"
// of the same product still merge.
func KeyFor(id, size, scent, category string) ItemKey {
	size = strings.TrimSpace(size)
	if size == "" {
		if d, ok := defaultSizes[strings.ToLower(strings.TrimSpace(category))]; ok {
			size = d
		} else {
			size = fallbackSize
		}
	}
	return ItemKey{
		ID:    strings.TrimSpace(id),
		Size:  size,
		Scent: strings.TrimSpace(scent),
	}
}

// Key returns the identity tuple for an existing line item.
func (li LineItem) Key() ItemKey {
	return ItemKey{ID: li.ID, Size: li.Size, Scent: li.Scent}
}

// LineTotal is unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (k ItemKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.ID, k.Size, k.Scent)
}

// newItemID generates an identifier for ad-hoc items added without one.
func newItemID() string {
	return fmt.Sprintf("custom-%s", uuid.NewString())
}
