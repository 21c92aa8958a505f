package models

import "time"

// LoginAttempt is one failed authentication try, recorded per origin
// address. Rows older than the lockout window stop counting toward the
// rate limit and are pruned opportunistically at check time.
type LoginAttempt struct {
	ID            string
	OriginAddress string
	AttemptedAt   time.Time
}
