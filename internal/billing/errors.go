package billing

import "errors"

// Sentinel errors for billing operations.
var (
	// ErrLimitExceeded indicates a charge that would take a bill over its limit.
	ErrLimitExceeded = errors.New("spending limit exceeded")
	// ErrNegativeAmount indicates a negative charge, payment or usage.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrInvalidAmount indicates a fractional message count.
	ErrInvalidAmount = errors.New("amount must be a whole number")
	// ErrUnknownOperator indicates a customer has no account with the operator.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrUnknownCustomer indicates a step naming a customer not in the script.
	ErrUnknownCustomer = errors.New("unknown customer")
	// ErrUnknownBill indicates a reference to a bill not in the script.
	ErrUnknownBill = errors.New("unknown bill")
	// ErrDuplicateID indicates two script entities sharing an ID.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnknownAction indicates a step with an unrecognised action.
	ErrUnknownAction = errors.New("unknown step action")
)
