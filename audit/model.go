// audit/model.go
package audit

import "time"

// Event types recorded by the auth core.
const (
	EventLoginSuccess  = "login_success"
	EventLoginFailure  = "login_failure"
	EventTokenRefresh  = "token_refresh"
	EventLogout        = "logout"
	EventAccessDenied  = "access_denied"
	EventAccessGranted = "access_granted"
)

type AuthEvent struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Action    string    `json:"action"`
	Granted   bool      `json:"granted"`
	Reason    string    `json:"reason,omitempty"`
	Path      string    `json:"path,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
}
