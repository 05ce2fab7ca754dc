package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrRollNoUnknown      ErrCode = "ROLL_NO_NOT_FOUND"
	ErrAccountExists      ErrCode = "ACCOUNT_EXISTS"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidIndex   ErrCode = "INVALID_INDEX"
	ErrUnknownOption  ErrCode = "UNKNOWN_OPTION"
	ErrUnknownAction  ErrCode = "UNKNOWN_ACTION"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Test session ──────────────────────────────────────────────────
	ErrNoCourse         ErrCode = "NO_COURSE"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrOutsideWindow    ErrCode = "OUTSIDE_WINDOW"
	ErrAlreadySubmitted ErrCode = "ALREADY_SUBMITTED"
	ErrSessionActive    ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrInvalidPhase     ErrCode = "INVALID_PHASE"
	ErrReviewLocked     ErrCode = "REVIEW_LOCKED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."
	case ErrRollNoUnknown:
		return "Roll number not found in records. Please contact the admin."
	case ErrAccountExists:
		return "An account already exists for this roll number or email."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Some fields are invalid."
	case ErrInvalidPayload:
		return "Request payload is malformed."
	case ErrInvalidIndex:
		return "Question index is out of range."
	case ErrUnknownOption:
		return "Selected answer is not one of the options."
	case ErrUnknownAction:
		return "Unknown action."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Test session ──────────────────────────────────────────────────
	case ErrNoCourse:
		return "No course is assigned to your account. Please contact support."
	case ErrNoQuestions:
		return "Questions for this course are not available. The test cannot start."
	case ErrOutsideWindow:
		return "This assessment is not open right now."
	case ErrAlreadySubmitted:
		return "You have already submitted this assessment."
	case ErrSessionActive:
		return "A test is already open in another window."
	case ErrInvalidPhase:
		return "This action is not available at this stage of the test."
	case ErrReviewLocked:
		return "Time is almost up. Please review and submit your answers."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	default:
		return "An internal error occurred. Please try again later."
	}
}
