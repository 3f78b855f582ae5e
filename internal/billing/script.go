package billing

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

//go:embed default.toml
var defaultScript []byte

// Step actions.
const (
	ActionTalk    = "talk"
	ActionMessage = "message"
	ActionConnect = "connect"
	ActionPay     = "pay"
	ActionLimit   = "limit"
)

// BillDef declares a bill.
type BillDef struct {
	ID         string  `toml:"id"`
	OperatorID int     `toml:"operator_id"`
	Limit      float64 `toml:"limit"`
}

// CustomerDef declares a customer and the bills they spend through.
type CustomerDef struct {
	ID        int      `toml:"id"`
	FirstName string   `toml:"first_name"`
	LastName  string   `toml:"last_name"`
	Age       int      `toml:"age"`
	Bills     []string `toml:"bills"`
}

// Step is one scripted action. Fields not used by the action are ignored:
// talk uses Customer, Callee, OperatorID and Amount (minutes); message uses
// Customer, OperatorID and Amount (count); connect uses Customer, OperatorID
// and Amount (megabytes); pay and limit use Bill and Amount.
type Step struct {
	Action     string  `toml:"action"`
	Customer   int     `toml:"customer"`
	Callee     int     `toml:"callee"`
	OperatorID int     `toml:"operator_id"`
	Bill       string  `toml:"bill"`
	Amount     float64 `toml:"amount"`
	Note       string  `toml:"note"`
}

// Script is a complete billing scenario.
type Script struct {
	Operators []Operator    `toml:"operator"`
	Bills     []BillDef     `toml:"bill"`
	Customers []CustomerDef `toml:"customer"`
	Steps     []Step        `toml:"step"`
}

// ParseScript decodes a TOML script.
func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := toml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("billing: parse script: %w", err)
	}
	return s, nil
}

// LoadScript reads a TOML script file.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("billing: read script: %w", err)
	}
	return ParseScript(data)
}

// DefaultScript returns the built-in demonstration: three operators, three
// bills shared between three customers, and a sequence of calls, messages,
// data use, payments and limit changes.
func DefaultScript() Script {
	s, err := ParseScript(defaultScript)
	if err != nil {
		panic(err) // embedded at build time; covered by tests
	}
	return s
}

// Network holds the entities built from a script.
type Network struct {
	Operators map[int]*Operator
	Bills     map[string]*Bill
	Customers map[int]*Customer
}

// Build creates the operators, bills and customers of the script.
func (s Script) Build() (*Network, error) {
	n := &Network{
		Operators: make(map[int]*Operator, len(s.Operators)),
		Bills:     make(map[string]*Bill, len(s.Bills)),
		Customers: make(map[int]*Customer, len(s.Customers)),
	}
	for i := range s.Operators {
		op := s.Operators[i]
		if _, ok := n.Operators[op.ID]; ok {
			return nil, fmt.Errorf("billing: operator %d: %w", op.ID, ErrDuplicateID)
		}
		n.Operators[op.ID] = &op
	}
	for _, def := range s.Bills {
		if _, ok := n.Bills[def.ID]; ok {
			return nil, fmt.Errorf("billing: bill %s: %w", def.ID, ErrDuplicateID)
		}
		if _, ok := n.Operators[def.OperatorID]; !ok {
			return nil, fmt.Errorf("billing: bill %s: operator %d: %w", def.ID, def.OperatorID, ErrUnknownOperator)
		}
		n.Bills[def.ID] = &Bill{ID: def.ID, OperatorID: def.OperatorID, Limit: def.Limit}
	}
	for _, def := range s.Customers {
		if _, ok := n.Customers[def.ID]; ok {
			return nil, fmt.Errorf("billing: customer %d: %w", def.ID, ErrDuplicateID)
		}
		c := NewCustomer(def.ID, def.FirstName, def.LastName, def.Age)
		for _, billID := range def.Bills {
			b, ok := n.Bills[billID]
			if !ok {
				return nil, fmt.Errorf("billing: customer %d: bill %s: %w", def.ID, billID, ErrUnknownBill)
			}
			c.Subscribe(n.Operators[b.OperatorID], b)
		}
		n.Customers[def.ID] = c
	}
	return n, nil
}

// Result is the outcome of one step.
type Result struct {
	Index    int // 1-based step position
	Step     Step
	Customer *Customer // nil for pay and limit
	Bill     Bill      // state of the affected bill after the step
	Cost     float64
	Err      error
}

// Run executes the steps against n. A failing step is recorded and the run
// continues.
func (n *Network) Run(steps []Step) []Result {
	results := make([]Result, 0, len(steps))
	for i, st := range steps {
		r := Result{Index: i + 1, Step: st}
		var bill *Bill
		bill, r.Cost, r.Err = n.apply(st, &r)
		if bill != nil {
			r.Bill = *bill
		}
		results = append(results, r)
	}
	return results
}

func (n *Network) apply(st Step, r *Result) (*Bill, float64, error) {
	action := strings.ToLower(strings.TrimSpace(st.Action))
	switch action {
	case ActionPay, ActionLimit:
		b, ok := n.Bills[st.Bill]
		if !ok {
			return nil, 0, fmt.Errorf("bill %q: %w", st.Bill, ErrUnknownBill)
		}
		if action == ActionPay {
			return b, 0, b.Pay(st.Amount)
		}
		b.ChangeLimit(st.Amount)
		return b, 0, nil
	case ActionTalk, ActionMessage, ActionConnect:
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownAction, st.Action)
	}

	c, ok := n.Customers[st.Customer]
	if !ok {
		return nil, 0, fmt.Errorf("customer %d: %w", st.Customer, ErrUnknownCustomer)
	}
	r.Customer = c
	bill, err := c.Bill(st.OperatorID)
	if err != nil {
		return nil, 0, err
	}

	var cost float64
	switch action {
	case ActionTalk:
		callee, ok := n.Customers[st.Callee]
		if !ok {
			return bill, 0, fmt.Errorf("callee %d: %w", st.Callee, ErrUnknownCustomer)
		}
		cost, err = c.Talk(st.Amount, callee, st.OperatorID)
	case ActionMessage:
		if st.Amount != math.Trunc(st.Amount) {
			return bill, 0, fmt.Errorf("message count %g: %w", st.Amount, ErrInvalidAmount)
		}
		cost, err = c.Message(int(st.Amount), st.OperatorID)
	case ActionConnect:
		cost, err = c.Connect(st.Amount, st.OperatorID)
	}
	return bill, cost, err
}
