package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldDuration    = "duration_ms"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldEntityType  = "entity_type"
	FieldEntityID    = "entity_id"
	FieldTitle       = "title"
	FieldAmountCents = "amount_cents"
	FieldCount       = "count"
	FieldLimit       = "limit"
	FieldBackend     = "backend"
	FieldCacheKey    = "cache_key"
	FieldCacheHit    = "cache_hit"
	FieldPath        = "path"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentFinance   = "finance"
	ComponentDashboard = "dashboard"
	ComponentStore     = "store"
	ComponentStorage   = "storage"
	ComponentBackend   = "backend"
	ComponentCache     = "cache"
	ComponentSeed      = "seed"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpMove     = "move"
	OpSeed     = "seed"
	OpMigrate  = "migrate"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNotFound      = "not_found_error"
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

// WithEntity adds the entity type and id
func (f LogFields) WithEntity(entityType, id string) LogFields {
	f[FieldEntityType] = entityType
	f[FieldEntityID] = id
	return f
}

// WithPeriod adds year and month; a zero month is left out
func (f LogFields) WithPeriod(year, month int) LogFields {
	f[FieldYear] = year
	if month != 0 {
		f[FieldMonth] = month
	}
	return f
}

// WithAmount adds amount in cents
func (f LogFields) WithAmount(cents int64) LogFields {
	f[FieldAmountCents] = cents
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
