package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInsufficientData     ErrorCode = 102
	ErrCodeInvalidType          ErrorCode = 103
	ErrCodeInvalidPeriod        ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105
	ErrCodeInvalidVersion       ErrorCode = 106
	ErrCodeInvalidThreshold     ErrorCode = 107
	ErrCodeInvalidDirection     ErrorCode = 108
	ErrCodeInvalidPriority      ErrorCode = 109
	ErrCodeInvalidInterval      ErrorCode = 110

	// Data/Cache errors (200-299)
	ErrCodeDataNotFound     ErrorCode = 200
	ErrCodeQueryFailed      ErrorCode = 201
	ErrCodeSnapshotStale    ErrorCode = 202
	ErrCodeEmptySeries      ErrorCode = 203
	ErrCodeCacheUnavailable ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Rule errors (400-499)
	ErrCodeRulesNotLoaded   ErrorCode = 400
	ErrCodeRuleConfigError  ErrorCode = 401
	ErrCodeRuleEvaluation   ErrorCode = 402
	ErrCodeUnsupportedRule  ErrorCode = 403
	ErrCodeVersionMismatch  ErrorCode = 404
	ErrCodeDuplicateRule   ErrorCode = 405

	// Position errors (500-599)
	ErrCodeSizingRejected    ErrorCode = 500
	ErrCodePositionNotFound  ErrorCode = 501
	ErrCodeInvalidTransition ErrorCode = 502
	ErrCodeOverReduction     ErrorCode = 503
	ErrCodePositionClosed    ErrorCode = 504

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 701
	ErrCodeInvalidProvider       ErrorCode = 702
	ErrCodeBreadthUnavailable    ErrorCode = 703
)
