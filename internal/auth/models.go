package auth

// SessionData is the per-session state held in the store for the session's
// 2-hour lifetime. The upstream access token never leaves the server.
type SessionData struct {
	AccessToken string `json:"access_token"`
	Login       string `json:"login"`
}

// LoginResult is handed back to the frontend after a completed OAuth
// exchange: the API's own signed access token plus display basics.
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	Login     string `json:"login"`
	Staff     bool   `json:"staff"`
}
