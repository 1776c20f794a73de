package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is the server-side record behind an issued token.
// ID is the token's jti claim.
type Session struct {
	ID        string             `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	IssuedAt  time.Time          `bson:"issuedAt" json:"issuedAt"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	RevokedAt *time.Time         `bson:"revokedAt,omitempty" json:"revokedAt,omitempty"`
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
