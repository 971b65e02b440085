package order

import "github.com/example/orderbot/internal/apperr"

// ItemStatus represents the possible states of an order item.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemCompleted ItemStatus = "completed"
)

// StatusOf derives the item state from its persisted completion flag.
func StatusOf(completed bool) ItemStatus {
	if completed {
		return ItemCompleted
	}
	return ItemPending
}

// ProgressResult is the next durable state of an item after a progress update.
type ProgressResult struct {
	Progress  int32
	Completed bool
}

// ApplyProgress adds delta to the current progress. Reaching or passing the
// requested quantity clamps progress to quantity and completes the item.
// delta must already have passed ValidateAmount.
func ApplyProgress(current, quantity int32, delta int64) ProgressResult {
	next := int64(current) + delta
	if next >= int64(quantity) {
		return ProgressResult{Progress: quantity, Completed: true}
	}
	return ProgressResult{Progress: int32(next), Completed: false}
}

// ApplyQuantityAdjustment returns the corrected quantity. The correction is
// additive. Completion is not re-evaluated.
func ApplyQuantityAdjustment(current int32, delta int64) (int32, error) {
	next := int64(current) + delta
	if next <= 0 {
		return 0, apperr.ErrInvalidQuantity()
	}
	if next > MaxAmount {
		return 0, apperr.ErrQuantityOutOfRange()
	}
	return int32(next), nil
}
