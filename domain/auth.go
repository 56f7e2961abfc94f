package domain

import "time"

// MagicToken is a single-use sign-in token. Only the hash of the secret is
// stored; redemption marks UsedAt rather than deleting, keeping an audit
// trail.
type MagicToken struct {
	TokenID   string    `json:"tokenId"`
	Email     string    `json:"email"`
	TokenHash string    `json:"tokenHash"`
	ExpiresAt int64     `json:"expiresAtEpoch"`
	UsedAt    string    `json:"usedAt,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthSession is a signed-in browser session minted when a magic token is
// redeemed.
type AuthSession struct {
	SessionID string    `json:"sessionId"`
	Email     string    `json:"email"`
	ExpiresAt int64     `json:"expiresAtEpoch"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IdempotencyRecord stores the outcome of a guarded mutation so retries can
// replay the original response. Once created it is immutable.
type IdempotencyRecord struct {
	Scope        string    `json:"scope"`
	Key          string    `json:"key"`
	RequestHash  string    `json:"requestHash"`
	StatusCode   int       `json:"responseStatusCode"`
	ResponseBody string    `json:"responseBody"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
