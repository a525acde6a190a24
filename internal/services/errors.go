package services

import "errors"

// Referential and payment errors. Validation errors come from core.
var (
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrTransactionVoided       = errors.New("transaction is voided")
	ErrDebtNotFound            = errors.New("debt not found")
	ErrCardNotFound            = errors.New("credit card not found")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrFixedExpenseNotFound    = errors.New("fixed expense not found")
	ErrNoFallbackCategory      = errors.New("fallback category missing")
	ErrFallbackCategory        = errors.New("fallback category cannot be deleted or renamed")
	ErrDuplicateCategory       = errors.New("category already exists")
	ErrInvalidPayment          = errors.New("payment must be positive and not exceed the remaining balance")
	ErrCycleDebtReadOnly       = errors.New("billing cycle debts are managed automatically")
	ErrDebtLinkedToTransaction = errors.New("debt is linked to a transaction")
	ErrMissingLoanPerson       = errors.New("loan requires a person")
)
