package common

// SessionCookieName is the cookie used to carry the session token
// established by a successful token redemption.
const SessionCookieName = "bluelink_session"
