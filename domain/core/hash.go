package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// PlanHash fingerprints an aggregation plan. Two runs over the same schema
// and configuration must produce the same PlanHash.
type PlanHash Hash

func NewPlanHash(data []byte) PlanHash { return PlanHash(NewHash(data)) }

func (h PlanHash) String() string { return Hash(h).String() }
