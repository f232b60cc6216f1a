package constraints

import "time"

// ErrorType classifies every failure surfaced by the API client.
type ErrorType string

const (
	NetworkError        ErrorType = "NETWORK_ERROR"
	TimeoutError        ErrorType = "TIMEOUT_ERROR"
	ValidationError     ErrorType = "VALIDATION_ERROR"
	AuthenticationError ErrorType = "AUTHENTICATION_ERROR"
	AuthorizationError  ErrorType = "AUTHORIZATION_ERROR"
	NotFoundError       ErrorType = "NOT_FOUND_ERROR"
	ServerError         ErrorType = "SERVER_ERROR"
	UnknownError        ErrorType = "UNKNOWN_ERROR"
)

// TimeRange selects how the chart loader resolves its date window.
type TimeRange string

const (
	RangeDaily   TimeRange = "daily"
	RangeWeekly  TimeRange = "weekly"
	RangeMonthly TimeRange = "monthly"
	RangeCustom  TimeRange = "custom"
)

// Variant is the visual style of a toast.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Session storage keys.
const (
	KeyAccessToken     = "accessToken"
	KeyRefreshToken    = "refreshToken"
	KeyTempToken       = "tempToken"
	KeyUser            = "user"
	KeyPasswordChanged = "passwordChanged"
)

const (
	DefaultBaseURL   = "http://localhost:5000/admin"
	DefaultTimeout   = 10 * time.Second
	AnalyticsTimeout = 2 * time.Minute
	ChartDebounce    = 800 * time.Millisecond
)

// Development login shared by mock mode and the development backend.
const (
	DevAdminEmail    = "admin@gmail.com"
	DevAdminPassword = "Admin@123"
)
