package errors

// Error code constants. Errors carry code + message; handlers render them
// as a consistent JSON envelope.

// Record error codes.
const (
	CodeCategoryNotFound = "CATEGORY_NOT_FOUND"
	CodeDocumentNotFound = "DOCUMENT_NOT_FOUND"
	CodeReportNotFound   = "REPORT_NOT_FOUND"
	CodeTaskNotFound     = "TASK_NOT_FOUND"
	CodeMeetingNotFound  = "MEETING_NOT_FOUND"
	CodeUserNotFound     = "USER_NOT_FOUND"
)

// Notification error codes.
const (
	CodeNotificationNotFound = "NOTIFICATION_NOT_FOUND"
	CodeNotificationType     = "NOTIFICATION_TYPE_UNKNOWN"
)

// Auth error codes.
const (
	CodeAuthFailed   = "AUTH_FAILED"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

// Validation error codes.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeMissingField     = "MISSING_REQUIRED_FIELD"
)

// Infrastructure error codes.
const (
	CodeDatabaseError = "DATABASE_ERROR"
	CodeInternal      = "INTERNAL_ERROR"
)
