package common

// Cookie names used to carry the token pair between server and browser
// clients. The same values appear as fields in JSON responses for
// non-cookie clients.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)
