package security

import (
	"fmt"
	"time"
)

// CodeValidity is how long a security code is accepted after it was issued.
const CodeValidity = 2 * time.Hour

// HashFunc maps a string to its digest.
type HashFunc func(string) string

// Code derives the security code binding date (Unix milliseconds) to a user
// and an origin pair.
func Code(hash HashFunc, date int64, userID, host, refererHost string) string {
	return hash(fmt.Sprintf("%d:%s:%s:%s", date, userID, host, refererHost))
}

// VerifyCode reports whether code was issued for the given user and origin
// pair no more than CodeValidity before now. Both the window and the digest
// must match.
func VerifyCode(hash HashFunc, now time.Time, date int64, userID, host, refererHost, code string) bool {
	elapsed := now.UnixMilli() - date
	if elapsed < 0 || elapsed > CodeValidity.Milliseconds() {
		return false
	}
	return Equal(Code(hash, date, userID, host, refererHost), code)
}
