// Package errors provides structured error handling for lawrag.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Corpus and index build errors
//   - 3XX: External service errors (embedding, vector index)
//   - 4XX: Caller argument errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryCorpus indicates corpus load and index build errors.
	CategoryCorpus Category = "CORPUS"
	// CategoryService indicates external embedding/vector service errors.
	CategoryService Category = "SERVICE"
	// CategoryArgument indicates invalid caller arguments.
	CategoryArgument Category = "ARGUMENT"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the process can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Corpus and index build errors (200-299). Fatal at startup, not retried.
	ErrCodeCorpusNotFound  = "ERR_201_CORPUS_NOT_FOUND"
	ErrCodeCorpusEmpty     = "ERR_202_CORPUS_EMPTY"
	ErrCodeCorpusMalformed = "ERR_203_CORPUS_MALFORMED"

	// External service errors (300-399). Recoverable by retry or by
	// degrading to lexical-only retrieval.
	ErrCodeEmbeddingUnavailable = "ERR_301_EMBEDDING_UNAVAILABLE"
	ErrCodeVectorUnavailable    = "ERR_302_VECTOR_UNAVAILABLE"
	ErrCodeNetworkTimeout       = "ERR_303_NETWORK_TIMEOUT"

	// Argument errors (400-499). Returned synchronously, never retried.
	ErrCodeInvalidTopK = "ERR_401_INVALID_TOPK"
	ErrCodeEmptyQuery  = "ERR_402_EMPTY_QUERY"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryCorpus
	case '3':
		return CategoryService
	case '4':
		return CategoryArgument
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch categoryFromCode(code) {
	case CategoryCorpus:
		// Corpus problems are startup failures.
		return SeverityFatal
	case CategoryService:
		// The caller may retry or fall back to lexical-only results.
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeEmbeddingUnavailable, ErrCodeVectorUnavailable, ErrCodeNetworkTimeout:
		return true
	default:
		return false
	}
}
