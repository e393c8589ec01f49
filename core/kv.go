package core

import (
	"context"
	"errors"
)

// Slot keys of the device-local state.
const (
	SlotProgress         = "progress"
	SlotPendingApprovals = "pending-approvals"
	SlotApprovedUsers    = "approved-users"
	SlotAuthToken        = "auth-token"
	SlotUserID           = "user-id"
	SlotDiscussion       = "discussion"
	SlotTopics           = "topics"
)

var ErrSlotNotFound = errors.New("slot not found")

// KVStore is a durable key-value slot store.
// Get returns ErrSlotNotFound when the slot has never been written (or was deleted).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
