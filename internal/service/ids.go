package service

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewBookingID returns 122 random bits of a version 4 UUID as 32 lowercase hex characters.
func NewBookingID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
