package auth

// Known OAuth scopes used by the coach endpoints.
const (
	ScopeInsightsRead = "insights:read"
	ScopeAlertsRead   = "alerts:read"
	ScopeAlertsWrite  = "alerts:write"
)
