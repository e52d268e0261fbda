// File: utils/constants.go
package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries.
const AuthCacheTTL = 10 * time.Minute

// CallbackSeenPrefix marks gateway correlation ids whose callbacks have
// already been processed. This is a fast-path only; the authoritative
// duplicate guard is the payment status on the booking record.
const CallbackSeenPrefix = "callback:seen:"

// CallbackSeenTTL bounds how long processed correlation ids are remembered.
const CallbackSeenTTL = 24 * time.Hour
