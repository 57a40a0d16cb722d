package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/"

	// Login surface
	RouteLogin  = "/login"
	RouteLogout = "/logout"

	// OAuth2 routes
	RouteAuthorize = "/authorize"
	RouteToken     = "/token"

	// Health
	RouteHealth = "/up"
)

// Form and query parameter names
const (
	paramReturnURL = "returnUrl"
	paramCSRFToken = "csrf_token"
	paramUsername  = "username"

	submitGrant = "submit.Grant"
	submitDeny  = "submit.Deny"
	submitLogin = "submit.Login"
)
