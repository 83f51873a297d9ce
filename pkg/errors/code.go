package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Team & Auth module errors
// 12000-12999: Challenge module errors
// 13000-13999: Submission & Judge module errors
// 14000-14999: Admin & Permission errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	Unauthorized        ErrorCode = 10004
	Forbidden           ErrorCode = 10005
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	// Database errors (10100-10199)
	DatabaseError       ErrorCode = 10100
	RecordNotFound      ErrorCode = 10101
	RecordAlreadyExists ErrorCode = 10102
	TransactionFailed   ErrorCode = 10103

	// Cache errors (10200-10299)
	CacheError ErrorCode = 10200
	CacheMiss  ErrorCode = 10201

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	InvalidValue       ErrorCode = 10302
	RequiredFieldEmpty ErrorCode = 10303

	// ========== Team & Auth Module Errors (11000-11999) ==========

	// Authentication (11000-11099)
	InvalidCredentials    ErrorCode = 11000
	TeamNotFound          ErrorCode = 11001
	TokenExpired          ErrorCode = 11002
	TokenInvalid          ErrorCode = 11003
	TokenGenerationFailed ErrorCode = 11004

	// Registration & state (11100-11199)
	TeamNameAlreadyExists ErrorCode = 11100
	InvalidTeamName       ErrorCode = 11101
	InvalidPassword       ErrorCode = 11102
	TeamInactive          ErrorCode = 11103

	// ========== Challenge Module Errors (12000-12999) ==========

	// Challenge basic (12000-12099)
	ChallengeNotFound     ErrorCode = 12000
	ChallengeInactive     ErrorCode = 12001
	ChallengeCreateFailed ErrorCode = 12002
	ChallengeUpdateFailed ErrorCode = 12003

	// Test cases & languages (12100-12199)
	TestCaseInvalid    ErrorCode = 12100
	LanguageNotAllowed ErrorCode = 12101

	// Flags (12200-12299)
	FlagIncorrect    ErrorCode = 12200
	FlagNotSupported ErrorCode = 12201

	// ========== Submission & Judge Module Errors (13000-13999) ==========

	// Submission (13000-13099)
	SubmissionNotFound     ErrorCode = 13000
	SubmissionCreateFailed ErrorCode = 13001
	SubmissionAccessDenied ErrorCode = 13002
	CodeTooLarge           ErrorCode = 13003
	SubmitTooFrequently    ErrorCode = 13004

	// Judge client (13100-13199)
	JudgeAuthFailed  ErrorCode = 13100
	JudgeRejected    ErrorCode = 13101
	JudgeUnavailable ErrorCode = 13102
	JudgeTransport   ErrorCode = 13103
	JudgePollTimeout ErrorCode = 13104
	JudgeAPIError    ErrorCode = 13105

	// Grading pipeline (13200-13299)
	GradingInternalError ErrorCode = 13200

	// ========== Admin & Permission Errors (14000-14999) ==========

	PermissionDenied     ErrorCode = 14000
	AdminOperationFailed ErrorCode = 14100
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	Unauthorized:        "Unauthorized access",
	Forbidden:           "Access forbidden",
	TooManyRequests:     "Too many requests, please try again later",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Database
	DatabaseError:       "Database operation failed",
	RecordNotFound:      "Record not found in database",
	RecordAlreadyExists: "Record already exists",
	TransactionFailed:   "Database transaction failed",

	// Cache
	CacheError: "Cache operation failed",
	CacheMiss:  "Cache miss",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	InvalidValue:       "Invalid value",
	RequiredFieldEmpty: "Required field is empty",

	// Team - Authentication
	InvalidCredentials:    "Invalid team name or password",
	TeamNotFound:          "Team not found",
	TokenExpired:          "Token has expired",
	TokenInvalid:          "Invalid token",
	TokenGenerationFailed: "Failed to generate token",

	// Team - Registration & state
	TeamNameAlreadyExists: "Team name already exists",
	InvalidTeamName:       "Invalid team name format",
	InvalidPassword:       "Invalid password format",
	TeamInactive:          "Team account is inactive",

	// Challenge
	ChallengeNotFound:     "Challenge not found",
	ChallengeInactive:     "Challenge is not currently active",
	ChallengeCreateFailed: "Failed to create challenge",
	ChallengeUpdateFailed: "Failed to update challenge",
	TestCaseInvalid:       "Invalid test case format",
	LanguageNotAllowed:    "Programming language not allowed for this challenge",
	FlagIncorrect:         "Incorrect flag",
	FlagNotSupported:      "Challenge does not accept flag submissions",

	// Submission
	SubmissionNotFound:     "Submission not found",
	SubmissionCreateFailed: "Failed to create submission",
	SubmissionAccessDenied: "Submission belongs to another team",
	CodeTooLarge:           "Source code is too large",
	SubmitTooFrequently:    "Submitting too frequently, please wait",

	// Judge client
	JudgeAuthFailed:  "Judge authentication failed, invalid API token",
	JudgeRejected:    "Judge rejected the submission payload",
	JudgeUnavailable: "Judge service unavailable, queue might be full",
	JudgeTransport:   "No response from judge service",
	JudgePollTimeout: "Judge result polling timed out",
	JudgeAPIError:    "Judge API error",

	// Grading
	GradingInternalError: "Grading pipeline internal error",

	// Admin
	PermissionDenied:     "Permission denied",
	AdminOperationFailed: "Admin operation failed",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c >= 11000 && c < 11100: // Authentication errors
		return 401
	case c == Unauthorized, c == TokenExpired, c == TokenInvalid:
		return 401
	case c == Forbidden, c == SubmissionAccessDenied, c >= 14000 && c < 14100:
		return 403
	case c == NotFound, c == TeamNotFound, c == ChallengeNotFound, c == SubmissionNotFound, c == RecordNotFound:
		return 404
	case c == TooManyRequests, c == SubmitTooFrequently:
		return 429
	case c == ServiceUnavailable, c == JudgeUnavailable:
		return 503
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams, c == ChallengeInactive, c == LanguageNotAllowed, c == CodeTooLarge,
		c == FlagIncorrect, c == FlagNotSupported:
		return 400
	default:
		return 500
	}
}
