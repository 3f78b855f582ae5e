// Package billing models a small telecom tariff: operators price calls,
// messages and data, bills accumulate debt up to a spending limit, and
// customers spend through one bill per operator they subscribe to.
package billing

import (
	"fmt"
	"math"
)

// Discounted age bounds: callees younger than MinFullPriceAge or older than
// MaxFullPriceAge get the operator's discount on calls.
const (
	MinFullPriceAge = 18
	MaxFullPriceAge = 65
)

// Operator prices usage.
type Operator struct {
	ID              int     `toml:"id"`
	TalkRate        float64 `toml:"talk_rate"`        // per minute
	MessageRate     float64 `toml:"message_rate"`     // per message
	DataRate        float64 `toml:"data_rate"`        // per megabyte
	DiscountPercent float64 `toml:"discount_percent"` // applied to calls only
}

// TalkCost prices a call. The discount depends on the age of the callee.
func (o *Operator) TalkCost(minutes float64, callee *Customer) float64 {
	cost := o.TalkRate * minutes
	if callee != nil && (callee.Age < MinFullPriceAge || callee.Age > MaxFullPriceAge) {
		cost *= 1 - o.DiscountPercent/100
	}
	return round(cost)
}

// MessageCost prices n messages.
func (o *Operator) MessageCost(n int) float64 {
	return round(float64(n) * o.MessageRate)
}

// DataCost prices mb megabytes.
func (o *Operator) DataCost(mb float64) float64 {
	return round(mb * o.DataRate)
}

// round keeps amounts to hundredths so that sums of prices stay exact enough
// to compare against limits.
func round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Bill accumulates debt towards one operator.
type Bill struct {
	ID         string
	OperatorID int
	Limit      float64
	Debt       float64
}

// CanCharge reports whether amount fits under the limit.
func (b *Bill) CanCharge(amount float64) bool {
	return b.Debt+amount <= b.Limit
}

// Charge adds amount to the debt, or fails with ErrLimitExceeded leaving the
// bill unchanged.
func (b *Bill) Charge(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("bill %s: charge %g: %w", b.ID, amount, ErrNegativeAmount)
	}
	if !b.CanCharge(amount) {
		return fmt.Errorf("bill %s: %w: debt %.2f + %.2f over limit %.2f", b.ID, ErrLimitExceeded, b.Debt, amount, b.Limit)
	}
	b.Debt = round(b.Debt + amount)
	return nil
}

// Pay reduces the debt. Paying more than is owed clears the debt and raises
// the limit by the surplus.
func (b *Bill) Pay(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("bill %s: pay %g: %w", b.ID, amount, ErrNegativeAmount)
	}
	if amount > b.Debt {
		b.Limit = round(b.Limit + amount - b.Debt)
		b.Debt = 0
		return nil
	}
	b.Debt = round(b.Debt - amount)
	return nil
}

// ChangeLimit moves the limit by delta, which may be negative. The limit
// never drops below zero.
func (b *Bill) ChangeLimit(delta float64) {
	b.Limit = round(math.Max(0, b.Limit+delta))
}

// Customer spends through one bill per subscribed operator.
type Customer struct {
	ID        int
	FirstName string
	LastName  string
	Age       int

	accounts map[int]account
}

type account struct {
	operator *Operator
	bill     *Bill
}

// NewCustomer creates a customer with no subscriptions.
func NewCustomer(id int, first, last string, age int) *Customer {
	return &Customer{ID: id, FirstName: first, LastName: last, Age: age, accounts: make(map[int]account)}
}

// Subscribe attaches a bill for an operator, replacing any earlier one.
func (c *Customer) Subscribe(op *Operator, bill *Bill) {
	c.accounts[op.ID] = account{operator: op, bill: bill}
}

// Bill returns the customer's bill with the operator.
func (c *Customer) Bill(operatorID int) (*Bill, error) {
	acc, err := c.account(operatorID)
	if err != nil {
		return nil, err
	}
	return acc.bill, nil
}

// Name returns the full name.
func (c *Customer) Name() string {
	return c.FirstName + " " + c.LastName
}

func (c *Customer) account(operatorID int) (account, error) {
	acc, ok := c.accounts[operatorID]
	if !ok {
		return account{}, fmt.Errorf("customer %d: operator %d: %w", c.ID, operatorID, ErrUnknownOperator)
	}
	return acc, nil
}

// Talk charges a call to callee and returns its cost.
func (c *Customer) Talk(minutes float64, callee *Customer, operatorID int) (float64, error) {
	if minutes < 0 {
		return 0, fmt.Errorf("customer %d: talk %g minutes: %w", c.ID, minutes, ErrNegativeAmount)
	}
	acc, err := c.account(operatorID)
	if err != nil {
		return 0, err
	}
	cost := acc.operator.TalkCost(minutes, callee)
	return cost, acc.bill.Charge(cost)
}

// Message charges n messages and returns their cost.
func (c *Customer) Message(n int, operatorID int) (float64, error) {
	if n < 0 {
		return 0, fmt.Errorf("customer %d: send %d messages: %w", c.ID, n, ErrNegativeAmount)
	}
	acc, err := c.account(operatorID)
	if err != nil {
		return 0, err
	}
	cost := acc.operator.MessageCost(n)
	return cost, acc.bill.Charge(cost)
}

// Connect charges mb megabytes of data and returns the cost.
func (c *Customer) Connect(mb float64, operatorID int) (float64, error) {
	if mb < 0 {
		return 0, fmt.Errorf("customer %d: use %g MB: %w", c.ID, mb, ErrNegativeAmount)
	}
	acc, err := c.account(operatorID)
	if err != nil {
		return 0, err
	}
	cost := acc.operator.DataCost(mb)
	return cost, acc.bill.Charge(cost)
}
