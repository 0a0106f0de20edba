package models

type SessionState string

const (
	StateRestoring       SessionState = "restoring"
	StateUnauthenticated SessionState = "unauthenticated"
	StateAuthenticating  SessionState = "authenticating"
	StateAuthenticated   SessionState = "authenticated"
)

type Session struct {
	User            *User        `json:"user"`
	Token           string       `json:"-"`
	IsAuthenticated bool         `json:"is_authenticated"`
	IsLoading       bool         `json:"is_loading"`
	State           SessionState `json:"state"`
}

type LoginRequest struct {
	Role Role   `json:"role"`
	From string `json:"from,omitempty"`
	Credentials
}

type LoginResponse struct {
	User     *User  `json:"user"`
	Redirect string `json:"redirect"`
}

type TokenLoginRequest struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}
