package currency

import (
	"github.com/shopspring/decimal"

	"github.com/uncoverhq/ops-backend/pkg/config"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
)

// Converter converts USD cent amounts into local currencies using fixed rates.
// Rates come from config and are placeholders until a real FX feed exists.
type Converter struct {
	kesPerUSD decimal.Decimal
	ngnPerUSD decimal.Decimal
}

// NewConverter parses the configured rates. Rates must be positive decimals.
func NewConverter(cfg config.FXConfig) (*Converter, error) {
	kes, err := decimal.NewFromString(cfg.KESPerUSD)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing KES rate")
	}
	ngn, err := decimal.NewFromString(cfg.NGNPerUSD)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing NGN rate")
	}
	if !kes.IsPositive() || !ngn.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fx rates must be positive")
	}
	return &Converter{kesPerUSD: kes, ngnPerUSD: ngn}, nil
}

// ConvertUSDCents converts a USD cent amount into the target currency, in cents,
// rounded half up.
func (c *Converter) ConvertUSDCents(usdCents int, target enums.Currency) (int, error) {
	rate, err := c.rateFor(target)
	if err != nil {
		return 0, err
	}
	converted := decimal.NewFromInt(int64(usdCents)).Mul(rate).Round(0)
	return int(converted.IntPart()), nil
}

// ConvertToUSDCents converts a local-currency cent amount back to USD cents,
// rounded half up. Used for cross-market totals reporting.
func (c *Converter) ConvertToUSDCents(localCents int, source enums.Currency) (int, error) {
	rate, err := c.rateFor(source)
	if err != nil {
		return 0, err
	}
	converted := decimal.NewFromInt(int64(localCents)).Div(rate).Round(0)
	return int(converted.IntPart()), nil
}

// FormatCents renders a cent amount as a major-unit decimal string, e.g. 12999 -> "129.99".
func FormatCents(cents int) string {
	return decimal.NewFromInt(int64(cents)).Shift(-2).StringFixed(2)
}

func (c *Converter) rateFor(target enums.Currency) (decimal.Decimal, error) {
	switch target {
	case enums.CurrencyUSD:
		return decimal.NewFromInt(1), nil
	case enums.CurrencyKES:
		return c.kesPerUSD, nil
	case enums.CurrencyNGN:
		return c.ngnPerUSD, nil
	default:
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}
}
