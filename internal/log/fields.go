package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldDuration    = "duration_ms"
	FieldSuccess     = "success"
	FieldBackend     = "backend"
	FieldDBPath      = "db_path"
	FieldTranxID     = "tranx_id"
	FieldTID         = "tid"
	FieldDirection   = "direction"
	FieldPurpose     = "purpose"
	FieldAmount      = "amount"
	FieldEpochMillis = "epoch_milliseconds"
	FieldFilter      = "filter"
	FieldResultCount = "result_count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentBackend = "backend"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpRecord   = "record"
	OpHistory  = "history"
	OpExtrema  = "extrema"
	OpCount    = "count"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error text; a nil error adds nothing.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTranx adds the identifying fields of one ledger entry.
func (f LogFields) WithTranx(id int64, tid, direction, purpose, amount string, epochMillis int64) LogFields {
	f[FieldTranxID] = id
	f[FieldTID] = tid
	f[FieldDirection] = direction
	if purpose != "" {
		f[FieldPurpose] = purpose
	}
	f[FieldAmount] = amount
	f[FieldEpochMillis] = epochMillis
	return f
}

func (f LogFields) WithDuration(durationMs int64, success bool) LogFields {
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
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
