package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while applying a command.
//
// Runtime errors include:
//   - Unknown block type or block ID
//   - Click on an affordance the block does not currently show
//   - Replay producing a different shape than the stored log
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// BlockID identifies the affected block.
	BlockID string

	// Seq identifies the event (for replay errors).
	Seq int64
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownBlock indicates an unknown block ID or block type.
	ErrCodeUnknownBlock RuntimeErrorCode = "UNKNOWN_BLOCK"

	// ErrCodeUnknownField indicates a click on an absent affordance.
	ErrCodeUnknownField RuntimeErrorCode = "UNKNOWN_FIELD"

	// ErrCodeInvalidCommand indicates a malformed command.
	ErrCodeInvalidCommand RuntimeErrorCode = "INVALID_COMMAND"

	// ErrCodeReplayMismatch indicates replay diverged from the stored log.
	ErrCodeReplayMismatch RuntimeErrorCode = "REPLAY_MISMATCH"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.BlockID != "" && e.Seq > 0 {
		return fmt.Sprintf("%s: %s (block=%s, seq=%d)", e.Code, e.Message, e.BlockID, e.Seq)
	}
	if e.BlockID != "" {
		return fmt.Sprintf("%s: %s (block=%s)", e.Code, e.Message, e.BlockID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownBlock returns true if the error is an unknown block error.
// Uses errors.As to handle wrapped errors.
func IsUnknownBlock(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownBlock
	}
	return false
}

// IsReplayMismatch returns true if the error is a replay divergence.
func IsReplayMismatch(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeReplayMismatch
	}
	return false
}

func newUnknownBlockError(blockID string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownBlock,
		Message: "no such block",
		BlockID: blockID,
	}
}

func newUnknownTypeError(blockType string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownBlock,
		Message: fmt.Sprintf("unknown block type %q", blockType),
	}
}

func newReplayMismatch(blockID string, seq int64, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeReplayMismatch,
		Message: fmt.Sprintf(format, args...),
		BlockID: blockID,
		Seq:     seq,
	}
}
