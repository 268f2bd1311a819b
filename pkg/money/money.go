// Package money holds the fixed-point amount type used for every price and
// total in the system. Amounts are always two-decimal and serialise as
// strings so clients never see floating point drift.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Places is the number of fractional digits kept for every amount.
	Places = 2
	// MaxDigits mirrors the decimal(6,2) column: at most 9999.99.
	MaxDigits = 6
)

var (
	ErrInvalid   = errors.New("invalid amount")
	ErrPrecision = errors.New("amount has more than 2 decimal places")
	ErrRange     = errors.New("amount out of range")
	ErrNegative  = errors.New("amount must not be negative")

	maxPrice = decimal.New(1, MaxDigits-Places).Sub(decimal.New(1, -Places))
)

// Amount is a non-floating monetary value.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{d: decimal.Zero}

// Parse reads a decimal string such as "10.99". Inputs with more than two
// fractional digits are rejected rather than rounded.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	if !d.Equal(d.Truncate(Places)) {
		return Zero, fmt.Errorf("%w: %q", ErrPrecision, s)
	}
	return Amount{d: d}, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Validate checks that the amount fits a non-negative decimal(6,2) price.
func (a Amount) Validate() error {
	if a.d.IsNegative() {
		return ErrNegative
	}
	if a.d.GreaterThan(maxPrice) {
		return fmt.Errorf("%w: %s exceeds %s", ErrRange, a, Amount{d: maxPrice})
	}
	return nil
}

// Mul multiplies by an integer quantity. The result stays exact.
func (a Amount) Mul(qty int) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromInt(int64(qty)))}
}

func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// String renders exactly two decimals, e.g. "21.98" or "10.00".
func (a Amount) String() string {
	return a.d.StringFixed(Places)
}

// Sum adds a list of amounts.
func Sum(amounts ...Amount) Amount {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both "10.99" and 10.99. Bare numbers are parsed from
// their literal text, never through float64.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = Zero
		return nil
	}
	s = strings.Trim(s, `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value stores the amount as a fixed two-decimal string.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan accepts the representations returned by the SQLite and Postgres
// drivers (float64, string, []byte, int64).
func (a *Amount) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("scan amount: %w", err)
	}
	a.d = d.Round(Places)
	return nil
}

// GormDataType keeps the column a decimal(6,2) on every dialect.
func (Amount) GormDataType() string {
	return "decimal(6,2)"
}
