package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldURL        = "url"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"
	FieldList       = "list"
	FieldField      = "field"
	FieldQuery      = "query"
	FieldPage       = "page"
	FieldTotalPages = "total_pages"
	FieldRecordID   = "record_id"
	FieldEndpoint   = "endpoint"
	FieldSource     = "source"
	FieldMissing    = "missing"
	FieldChartID    = "chart_id"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentList    = "record_list"
	ComponentMarkup  = "markup"
	ComponentAPI     = "api"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
	ComponentWatch   = "watch"
	ComponentTUI     = "tui"
	ComponentCharts  = "charts"
	ComponentWorker  = "worker"
)

// Operations defines standard operation names
const (
	OpFilter   = "filter"
	OpSort     = "sort"
	OpPaginate = "paginate"
	OpAdd      = "add"
	OpDelete   = "delete"
	OpRefresh  = "refresh"
	OpBind     = "bind"
	OpFetch    = "fetch"
	OpPublish  = "publish"
	OpExport   = "export"
	OpRestore  = "restore"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
	OpPrune    = "prune"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeMapping       = "mapping_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeTimeout       = "timeout_error"
	ErrorTypeInternal      = "internal_error"
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

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithField adds an arbitrary field
func (f LogFields) WithField(key string, value any) LogFields {
	f[key] = value
	return f
}

// WithList adds the record list name
func (f LogFields) WithList(name string) LogFields {
	f[FieldList] = name
	return f
}

// WithPage adds pagination fields
func (f LogFields) WithPage(page, total int) LogFields {
	f[FieldPage] = page
	f[FieldTotalPages] = total
	return f
}

// WithRecord adds the record identity
func (f LogFields) WithRecord(endpoint, id string) LogFields {
	f[FieldEndpoint] = endpoint
	f[FieldRecordID] = id
	return f
}

// WithHTTPRequest adds outgoing request fields
func (f LogFields) WithHTTPRequest(method, url string) LogFields {
	f[FieldMethod] = method
	f[FieldURL] = url
	return f
}

// WithHTTPResponse adds HTTP response fields
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
