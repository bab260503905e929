package valueobject

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	CNY Currency = "CNY" // Chinese Yuan (default)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	JPY Currency = "JPY" // Japanese Yen
	HKD Currency = "HKD" // Hong Kong Dollar
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = CNY

// Scale is the number of decimal places every Money amount carries
const Scale int32 = 2

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ParseCurrency validates an ISO 4217 currency code
func ParseCurrency(code string) (Currency, error) {
	if !currencyCodePattern.MatchString(code) {
		return "", shared.NewValidationError(shared.ErrInvalidCurrency.Code,
			fmt.Sprintf("Currency code must be 3 uppercase letters: %q", code))
	}
	if _, err := currency.ParseISO(code); err != nil {
		return "", shared.NewValidationError(shared.ErrInvalidCurrency.Code,
			fmt.Sprintf("Unknown currency code: %s", code))
	}
	return Currency(code), nil
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether c is a recognised ISO 4217 code
func (c Currency) IsValid() bool {
	_, err := ParseCurrency(string(c))
	return err == nil
}

// Symbol returns the narrow display symbol (e.g. "¥", "$"), falling back to the code
func (c Currency) Symbol() string {
	unit, err := currency.ParseISO(string(c))
	if err != nil {
		return string(c)
	}
	return fmt.Sprint(currency.NarrowSymbol(unit))
}

// Money is a value object representing monetary amounts.
// It is immutable: every operation returns a new Money.
// Amounts always carry exactly two decimal places.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates Money from an amount that has at most two decimal places
func NewMoney(amount decimal.Decimal, cur Currency) (Money, error) {
	if _, err := ParseCurrency(string(cur)); err != nil {
		return Money{}, err
	}
	if !amount.Equal(amount.Round(Scale)) {
		return Money{}, shared.NewValidationError(shared.ErrInvalidAmount.Code,
			fmt.Sprintf("Amount %s has more than %d decimal places", amount.String(), Scale))
	}
	return Money{amount: amount.Round(Scale), currency: cur}, nil
}

// MustNewMoney is NewMoney for constants in tests and wiring; it panics on error
func MustNewMoney(amount decimal.Decimal, cur Currency) Money {
	m, err := NewMoney(amount, cur)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromInt creates Money from a whole number of currency units
func NewMoneyFromInt(amount int64, cur Currency) (Money, error) {
	return NewMoney(decimal.NewFromInt(amount), cur)
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string, cur Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, shared.NewValidationError(shared.ErrInvalidAmount.Code,
			fmt.Sprintf("Invalid amount string %q", amount))
	}
	return NewMoney(d, cur)
}

// CNYFromString creates Money in CNY from string
func CNYFromString(amount string) (Money, error) {
	return NewMoneyFromString(amount, CNY)
}

// NewZero returns a zero-value Money, rejecting unknown currency codes
func NewZero(cur Currency) (Money, error) {
	return NewMoney(decimal.Zero, cur)
}

// Zero is NewZero for a currency taken from existing Money or a validated
// aggregate. It panics on an unknown code.
func Zero(cur Currency) Money {
	return MustNewMoney(decimal.Zero, cur)
}

// ZeroCNY returns a zero-value Money in CNY
func ZeroCNY() Money {
	return Zero(CNY)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// SameCurrency reports whether both values share a currency
func (m Money) SameCurrency(other Money) bool {
	return m.currency == other.currency
}

func (m Money) checkCurrency(op string, other Money) error {
	if m.currency != other.currency {
		return shared.NewDomainError(shared.KindInvariantViolation, shared.ErrCurrencyMismatch.Code,
			fmt.Sprintf("Cannot %s money with different currencies: %s and %s", op, m.currency, other.currency))
	}
	return nil
}

// Add returns the sum of both amounts
func (m Money) Add(other Money) (Money, error) {
	if err := m.checkCurrency("add", other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns the difference of both amounts
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.checkCurrency("subtract", other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Multiply returns m times factor, rounded half-up to two places
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor).Round(Scale), currency: m.currency}
}

// Divide returns m divided by divisor, rounded half-up to two places
func (m Money) Divide(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, shared.ErrDivisionByZero
	}
	return Money{amount: m.amount.DivRound(divisor, Scale), currency: m.currency}, nil
}

// Negate returns a new Money with the sign reversed
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Abs returns a new Money with the absolute value
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// Equals returns true if both Money values have the same amount and currency
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Compare returns -1, 0 or 1
func (m Money) Compare(other Money) (int, error) {
	if err := m.checkCurrency("compare", other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// LessThan returns true if this Money is less than the other
func (m Money) LessThan(other Money) (bool, error) {
	c, err := m.Compare(other)
	return c < 0, err
}

// LessThanOrEqual returns true if this Money is less than or equal to the other
func (m Money) LessThanOrEqual(other Money) (bool, error) {
	c, err := m.Compare(other)
	return err == nil && c <= 0, err
}

// GreaterThan returns true if this Money is greater than the other
func (m Money) GreaterThan(other Money) (bool, error) {
	c, err := m.Compare(other)
	return c > 0, err
}

// GreaterThanOrEqual returns true if this Money is greater than or equal to the other
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	c, err := m.Compare(other)
	return err == nil && c >= 0, err
}

// String returns "100.00 CNY"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(Scale), m.currency)
}

// DisplayString returns the amount prefixed by the currency symbol, e.g. "¥100.00"
func (m Money) DisplayString() string {
	return m.currency.Symbol() + m.amount.StringFixed(Scale)
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.amount.StringFixed(Scale),
		Currency: m.currency,
	})
}

// UnmarshalJSON goes through NewMoney so decoded values satisfy the same
// scale and currency rules as constructed ones
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewMoneyFromString(v.Amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Sum adds values that must all be in cur
func Sum(cur Currency, values ...Money) (Money, error) {
	total, err := NewZero(cur)
	if err != nil {
		return Money{}, err
	}
	for _, v := range values {
		if total, err = total.Add(v); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
