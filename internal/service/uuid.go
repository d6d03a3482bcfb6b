package service

import "github.com/google/uuid"

// UUIDGenerator abstracts ID generation so tests can script IDs
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator generates random UUIDs
type DefaultUUIDGenerator struct{}

func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}
