package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldRecordID   = "record_id"
	FieldDate       = "date"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldCount      = "count"
	FieldURL        = "url"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentGateway   = "gateway"
	ComponentState     = "state"
	ComponentStore     = "store"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentScheduler = "scheduler"
	ComponentExport    = "export"
)

// Operations defines standard operation names
const (
	OpList    = "list"
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpSummary = "summary"
	OpExport  = "export"
	OpRender  = "render"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error text; nil errors are ignored.
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

// WithRecord adds the identifying fields of an expense record. An empty id
// is omitted so create logs stay clean.
func (f LogFields) WithRecord(id, date, category, amount string) LogFields {
	if id != "" {
		f[FieldRecordID] = id
	}
	f[FieldDate] = date
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
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
