package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	CodeInternal      ErrorCode = "COMMON_001"
	CodeInvalidParam  ErrorCode = "COMMON_002"
	CodeSerialization ErrorCode = "COMMON_003"
	CodeIOFailure     ErrorCode = "COMMON_004"
)

// Sentinel codes returned by chain-inspection helpers. They are never
// attached to a constructed AppError directly.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Rule-configuration error codes. All of these are fatal at startup:
// the engine refuses to construct from an incomplete or inconsistent
// rule document.
const (
	CodeConfigMissingKey ErrorCode = "CFG_001"
	CodeConfigInvalid    ErrorCode = "CFG_002"
	CodeConfigUnreadable ErrorCode = "CFG_003"
	CodeConfigBadPattern ErrorCode = "CFG_004"
)

// Record error codes
const (
	// CodeRecordInvalid marks the single fatal per-record condition:
	// a record without a scientific name cannot be evaluated.
	CodeRecordInvalid ErrorCode = "REC_001"
)

// Batch driver error codes
const (
	CodeBatchInput ErrorCode = "BAT_001"
)

// Acceptance harness error codes
const (
	CodeFixtureInvalid ErrorCode = "ACC_001"
	// CodeAcceptanceFailed reports a completed run with at least one
	// failing fixture. The report is still written.
	CodeAcceptanceFailed ErrorCode = "ACC_002"
)
