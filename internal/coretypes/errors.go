package coretypes

import "fmt"

// The error taxonomy from spec.md §7. Each kind is a distinct Go type
// rather than a single error-code field, so callers can `errors.As` to the
// specific kind they care about. Every type keeps an optional Cause for
// errors.Unwrap, supplementing spec.md from
// original_source/crates/cortex-drift-bridge/src/errors/{chain,context}.rs
// which chain causes rather than flattening them into a string.

// Code is the stable short code surfaced to callers (spec.md §7).
type Code string

// StorageError covers sqlite failures, migrations, corruption, and pool
// exhaustion.
type StorageError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage[%s]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage[%s]: %s", e.Code, e.Message)
}
func (e *StorageError) Unwrap() error { return e.Cause }

const (
	CodeSqliteError            Code = "sqlite_error"
	CodeMigrationFailed        Code = "migration_failed"
	CodeCorruptionDetected     Code = "corruption_detected"
	CodeConnectionPoolExhausted Code = "connection_pool_exhausted"
	CodeDuplicateID            Code = "duplicate_id"
	CodeNotFound               Code = "not_found"
)

func NewSqliteError(msg string, cause error) *StorageError {
	return &StorageError{Code: CodeSqliteError, Message: msg, Cause: cause}
}

func NewMigrationFailed(version int, reason string) *StorageError {
	return &StorageError{Code: CodeMigrationFailed, Message: fmt.Sprintf("version %d: %s", version, reason)}
}

func NewCorruptionDetected(detail string) *StorageError {
	return &StorageError{Code: CodeCorruptionDetected, Message: detail}
}

func NewConnectionPoolExhausted(active int) *StorageError {
	return &StorageError{Code: CodeConnectionPoolExhausted, Message: fmt.Sprintf("%d active connections", active)}
}

func NewDuplicateID(id string) *StorageError {
	return &StorageError{Code: CodeDuplicateID, Message: fmt.Sprintf("id already exists: %s", id)}
}

func NewNotFound(id string) *StorageError {
	return &StorageError{Code: CodeNotFound, Message: fmt.Sprintf("id not found: %s", id)}
}

// RetrievalError covers budget/search/ranking failures in the retrieval
// pipeline.
type RetrievalError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval[%s]: %s", e.Code, e.Message)
}
func (e *RetrievalError) Unwrap() error { return e.Cause }

const (
	CodeBudgetExceeded Code = "budget_exceeded"
	CodeNoResults      Code = "no_results"
	CodeSearchFailed   Code = "search_failed"
	CodeRankingFailed  Code = "ranking_failed"
)

func NewSearchFailed(msg string, cause error) *RetrievalError {
	return &RetrievalError{Code: CodeSearchFailed, Message: msg, Cause: cause}
}

func NewRankingFailed(msg string, cause error) *RetrievalError {
	return &RetrievalError{Code: CodeRankingFailed, Message: msg, Cause: cause}
}

// CausalError covers DAG violations and traversal failures.
type CausalError struct {
	Code    Code
	Message string
}

func (e *CausalError) Error() string { return fmt.Sprintf("causal[%s]: %s", e.Code, e.Message) }

const (
	CodeCycleDetected     Code = "cycle_detected"
	CodeDepthExceeded     Code = "depth_exceeded"
	CodeInvalidRelation   Code = "invalid_relation"
	CodeGraphInconsistent Code = "graph_inconsistent"
)

func NewCycleDetected(source, target string) *CausalError {
	return &CausalError{Code: CodeCycleDetected, Message: fmt.Sprintf("%s -> %s would create a cycle", source, target)}
}

func NewDepthExceeded(max int) *CausalError {
	return &CausalError{Code: CodeDepthExceeded, Message: fmt.Sprintf("max depth %d exceeded", max)}
}

func NewInvalidRelation(relation string) *CausalError {
	return &CausalError{Code: CodeInvalidRelation, Message: fmt.Sprintf("invalid relation: %s", relation)}
}

// ValidationError covers contradiction/validation engine failures.
type ValidationError struct {
	Code    Code
	Message string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("validation[%s]: %s", e.Code, e.Message) }

const (
	CodeValidationFailed Code = "validation_failed"
)

func NewValidationFailed(msg string) *ValidationError {
	return &ValidationError{Code: CodeValidationFailed, Message: msg}
}

// ConsolidationError covers clustering/abstraction pipeline failures.
type ConsolidationError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *ConsolidationError) Error() string {
	return fmt.Sprintf("consolidation[%s]: %s", e.Code, e.Message)
}
func (e *ConsolidationError) Unwrap() error { return e.Cause }

const (
	CodeClusteringFailed  Code = "clustering_failed"
	CodeAbstractionFailed Code = "abstraction_failed"
)

func NewClusteringFailed(msg string, cause error) *ConsolidationError {
	return &ConsolidationError{Code: CodeClusteringFailed, Message: msg, Cause: cause}
}

// CloudError covers multi-agent sync failures.
type CloudError struct {
	Code    Code
	Message string
}

func (e *CloudError) Error() string { return fmt.Sprintf("cloud[%s]: %s", e.Code, e.Message) }

const (
	CodeAuthFailed      Code = "auth_failed"
	CodeSyncConflict    Code = "sync_conflict"
	CodeNetworkError    Code = "network_error"
	CodeQuotaExceeded   Code = "quota_exceeded"
	CodeVersionMismatch Code = "version_mismatch"
)

func NewSyncConflict(msg string) *CloudError {
	return &CloudError{Code: CodeSyncConflict, Message: msg}
}

// ConfigError covers configuration load/validation failures.
type ConfigError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config[%s]: %s", e.Code, e.Message) }
func (e *ConfigError) Unwrap() error { return e.Cause }

const CodeInvalidConfig Code = "invalid_config"

func NewInvalidConfig(msg string, cause error) *ConfigError {
	return &ConfigError{Code: CodeInvalidConfig, Message: msg, Cause: cause}
}

// StepError captures one recoverable failure within a batch operation,
// keyed by the input's index, per spec.md §7 propagation rule: a batch
// never aborts for recoverable per-item failures; it returns partial
// results plus a StepError per failed index.
type StepError struct {
	Index int
	Err   error
}

func (e StepError) Error() string { return fmt.Sprintf("step %d: %v", e.Index, e.Err) }

// DegradationEvent records a subsystem silently falling back to a
// lower-quality mode (spec.md §7): these are NOT failures and are
// recorded on a dedicated log surfaced via the health interface.
type DegradationEvent struct {
	Component string
	Reason    string
	Timestamp int64 // unix seconds, stamped by caller via Clock
}
