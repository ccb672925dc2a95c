// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService = "service"
	FieldVersion = "version"
	FieldJobID   = "job_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldWorkers   = "workers"

	// Corpus fields
	FieldPath      = "path"
	FieldFormat    = "format"
	FieldLanguages = "languages"
	FieldRead      = "read"
	FieldWritten   = "written"
	FieldSkipped   = "skipped"
	FieldStorePath = "store_path"
	FieldOutput    = "output"
)
