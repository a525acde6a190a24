package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldDebtID        = "debt_id"
	FieldCardID        = "card_id"
	FieldCategoryID    = "category_id"
	FieldAmountCents   = "amount_cents"
	FieldCollection    = "collection"
	FieldSheetRow      = "sheet_row"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentImport  = "import"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpSave     = "save"
	OpVoid     = "void"
	OpPay      = "pay"
	OpDelete   = "delete"
	OpImport   = "import"
	OpSync     = "sync"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds the transaction id and amount.
func (f LogFields) WithTransaction(id string, amountCents int64) LogFields {
	f[FieldTransactionID] = id
	f[FieldAmountCents] = amountCents
	return f
}

func (f LogFields) WithDebt(id string) LogFields {
	f[FieldDebtID] = id
	return f
}

func (f LogFields) WithCard(id string) LogFields {
	f[FieldCardID] = id
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
