package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
// Verbosity Levels:
//
//	0 (default) - Results, errors, final status
//	1 (-v)      - + Startup, client connect/disconnect, drop outcomes
//	2 (-vv)     - + Config loaded, HTTP requests, geometry summaries
//	3 (-vvv)    - + SQL queries, per-message routing
//	4 (-vvvv)   - + Full socket payloads and line dumps

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults OutputCategory = iota
	OutputErrors
	OutputUserStatus

	// Level 1 (-v) - Informational
	OutputStartup
	OutputClientStatus
	OutputDropOutcome

	// Level 2 (-vv) - Detailed
	OutputConfig
	OutputHTTPCalls
	OutputGeometry

	// Level 3 (-vvv) - Debug
	OutputSQLQueries
	OutputMessageRouting

	// Level 4 (-vvvv) - Full dump
	OutputPayloadDump
	OutputLineDump
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	OutputStartup:      VerbosityInfo,
	OutputClientStatus: VerbosityInfo,
	OutputDropOutcome:  VerbosityInfo,

	OutputConfig:    VerbosityDebug,
	OutputHTTPCalls: VerbosityDebug,
	OutputGeometry:  VerbosityDebug,

	OutputSQLQueries:     VerbosityTrace,
	OutputMessageRouting: VerbosityTrace,

	OutputPayloadDump: VerbosityAll,
	OutputLineDump:    VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}
