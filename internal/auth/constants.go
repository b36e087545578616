package auth

// AuthCookieName is the name of the httpOnly cookie used for browser session auth.
// HTTP middleware and the websocket upgrade both read it.
const AuthCookieName = "klondike_session"
