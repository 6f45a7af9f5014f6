// File: utils/constants.go
package utils

// SessionCachePrefix is the prefix used for Redis conversation keys.
const SessionCachePrefix = "chat:session:"

// AppName is reported by the banner and health endpoints.
const AppName = "TailorTalk Booking Agent"

// AppVersion is reported by the banner and health endpoints.
const AppVersion = "1.0.0"
