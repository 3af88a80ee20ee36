package auth

import "time"

// Strategy issues and verifies the session tokens carried by the member
// cookie and the Authorization header.
type Strategy interface {
	IssueToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
