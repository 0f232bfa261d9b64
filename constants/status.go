package constants

// VerdictStatus is the overall_status vocabulary of a comparison verdict.
type VerdictStatus string

// Values the model must answer with.
const (
	StatusPass     VerdictStatus = "Pass"
	StatusMismatch VerdictStatus = "Mismatch"
)

// Report status column values.
const (
	ReportPass          = "Pass"
	ReportMismatch      = "Mismatch"
	ReportMissingOutput = "Missing Output"
	ReportError         = "Error"
)

// Placeholder is written into inapplicable report cells.
const Placeholder = "-"

// FailureKind classifies a per-file failure. Stable values, they are stored in the ledger.
type FailureKind string

const (
	KindNone             FailureKind = ""
	KindNoJSONSpan       FailureKind = "no_json_span"
	KindJSONSyntax       FailureKind = "json_syntax"
	KindTransport        FailureKind = "transport"
	KindMissingOutput    FailureKind = "missing_output"
	KindInvalidStatus    FailureKind = "invalid_status"
	KindDegradedMismatch FailureKind = "degraded_mismatch"
	KindInvalidOutput    FailureKind = "invalid_output"
	KindLoad             FailureKind = "load"
	KindSchemaViolation  FailureKind = "schema_violation"
	KindDuplicateOutput  FailureKind = "duplicate_output"
	KindWrite            FailureKind = "write"
	KindUnexpected       FailureKind = "unexpected"
)

// Stage names a pipeline stage in the ledger.
type Stage string

const (
	StageRoute   Stage = "ROUTE"
	StageExtract Stage = "EXTRACT"
)

// Outcome is the terminal disposition of a file within a stage.
type Outcome string

const (
	OutcomeRouted    Outcome = "ROUTED"
	OutcomeExtracted Outcome = "EXTRACTED"
	OutcomeSkipped   Outcome = "SKIPPED"
	OutcomeFailed    Outcome = "FAILED"
)

// UnknownVendor is the vendor folder used when the model names no seller.
const UnknownVendor = "Unknown"
