package pricing

import (
	"errors"
	"math"

	"github.com/example/storefront-cart/internal/money"
)

var (
	ErrNegativeThreshold = errors.New("free shipping threshold must not be negative")
	ErrNegativeFee       = errors.New("base shipping fee must not be negative")
	ErrTotalTooLarge     = errors.New("cart total exceeds the supported maximum")
)

// MaxItemCount bounds the number of units across all lines.
const MaxItemCount = math.MaxInt32

// Config holds the shipping rules. It is supplied from outside the cart and
// never mutated by it.
type Config struct {
	FreeShippingThreshold money.Amount `json:"free_shipping_threshold"`
	BaseShippingFee       money.Amount `json:"base_shipping_fee"`
}

// DefaultConfig returns the storefront defaults: free shipping from
// KES 10,000, otherwise a KES 500 flat fee.
func DefaultConfig() Config {
	return Config{
		FreeShippingThreshold: money.FromMajor(10000),
		BaseShippingFee:       money.FromMajor(500),
	}
}

func (c Config) Validate() error {
	if c.FreeShippingThreshold < 0 {
		return ErrNegativeThreshold
	}
	if c.BaseShippingFee < 0 {
		return ErrNegativeFee
	}
	if c.FreeShippingThreshold > money.MaxAmount || c.BaseShippingFee > money.MaxAmount {
		return money.ErrAmountTooLarge
	}
	return nil
}

// Line is the pricing view of a cart line.
type Line struct {
	UnitPrice money.Amount
	Quantity  int
}

// Totals are the values derived from the cart contents.
type Totals struct {
	ItemCount    int          `json:"item_count"`
	Subtotal     money.Amount `json:"subtotal"`
	ShippingCost money.Amount `json:"shipping_cost"`
	Total        money.Amount `json:"total"`
}

// CheckLimits reports ErrTotalTooLarge when the lines' subtotal would
// exceed money.MaxAmount or their unit count MaxItemCount. ComputeTotals is
// only exact for lines that pass.
func CheckLimits(lines []Line) error {
	var count int64
	var subtotal money.Amount
	for _, l := range lines {
		lineTotal, ok := l.UnitPrice.MulChecked(l.Quantity)
		if !ok || lineTotal > money.MaxAmount-subtotal {
			return ErrTotalTooLarge
		}
		subtotal += lineTotal
		count += int64(l.Quantity)
		if count > MaxItemCount {
			return ErrTotalTooLarge
		}
	}
	return nil
}

// ComputeTotals derives item count, subtotal, shipping and grand total.
// An empty cart is never charged shipping; a subtotal equal to the
// threshold already ships free.
func ComputeTotals(lines []Line, cfg Config) Totals {
	var t Totals
	for _, l := range lines {
		t.ItemCount += l.Quantity
		t.Subtotal += l.UnitPrice.Mul(l.Quantity)
	}

	switch {
	case len(lines) == 0:
		t.ShippingCost = 0
	case t.Subtotal >= cfg.FreeShippingThreshold:
		t.ShippingCost = 0
	default:
		t.ShippingCost = cfg.BaseShippingFee
	}

	t.Total = t.Subtotal + t.ShippingCost
	return t
}

// Progress describes how close a subtotal is to free shipping.
type Progress struct {
	Remaining money.Amount `json:"remaining"`
	Percent   int          `json:"percent"`
	Qualified bool         `json:"qualified"`
}

// FreeShippingProgress reports the amount still needed for free shipping
// and a 0-100 progress percentage, rounded down.
func FreeShippingProgress(subtotal money.Amount, cfg Config) Progress {
	if subtotal >= cfg.FreeShippingThreshold {
		return Progress{Percent: 100, Qualified: true}
	}
	return Progress{
		Remaining: cfg.FreeShippingThreshold - subtotal,
		Percent:   int(int64(subtotal) * 100 / int64(cfg.FreeShippingThreshold)),
	}
}
