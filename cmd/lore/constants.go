package main

import "time"

// Default limits for CLI commands.
const (
	DefaultQueryLimit = 10
	// MaxSourceWidth is the widest source path shown in tables.
	MaxSourceWidth = 30
	// DefaultHistoryLimit is the number of audit entries shown by history.
	DefaultHistoryLimit = 20
)

// indexProbeTimeout bounds the vector store check done before each command.
const indexProbeTimeout = 5 * time.Second

// Valid export formats.
var validFormats = []string{"json", "csv", "markdown"}

// Valid --on-conflict values for import.
var validConflictStrategies = []string{"skip", "overwrite"}
