package logging

// Standardized field names for structured logging.
const (
	FieldFile         = "file_path"
	FieldOutputFile   = "output_file"
	FieldDirectory    = "directory"
	FieldOperation    = "operation"
	FieldStage        = "stage"
	FieldStatus       = "status"
	FieldError        = "error"
	FieldDuration     = "duration_ms"
	FieldCount        = "count"
	FieldYear         = "year"
	FieldMonth        = "month"
	FieldHeader       = "header"
	FieldLine         = "line"
	FieldLineNumber   = "line_number"
	FieldRecordNumber = "record_number"
	FieldMissing      = "missing"
	FieldAttempt      = "attempt"
	FieldRegion       = "region"
	FieldRunID        = "run_id"
	FieldWorkers      = "workers"
)
