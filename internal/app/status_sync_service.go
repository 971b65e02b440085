package app

import (
	"context"
	"fmt"

	"github.com/example/orderbot/internal/apperr"
	"github.com/example/orderbot/internal/core/summary"
	"github.com/example/orderbot/internal/ports/primary"
	"github.com/example/orderbot/internal/ports/secondary"
)

// statusScanWindow is how many recent messages are searched for the pinned
// status message.
const statusScanWindow = 10

// StatusSyncServiceImpl keeps one pinned status message per thread in step
// with the order's rendering.
type StatusSyncServiceImpl struct {
	summaries primary.SummaryService
	locker    secondary.Locker
}

// NewStatusSyncService creates a new StatusSyncService.
func NewStatusSyncService(summaries primary.SummaryService, locker secondary.Locker) *StatusSyncServiceImpl {
	return &StatusSyncServiceImpl{
		summaries: summaries,
		locker:    locker,
	}
}

// Sync edits the pinned status message in place, or sends and pins a new one
// when none is found. Chat failures are returned as collaborator errors; the
// order state is never touched here.
func (s *StatusSyncServiceImpl) Sync(ctx context.Context, thread secondary.ChatThread, orderID int64) error {
	return withLock(ctx, s.locker, threadLockKey(thread.Key()), func() error {
		report, err := s.summaries.Render(ctx, orderID)
		if err != nil {
			return fmt.Errorf("failed to render order %d: %w", orderID, err)
		}
		content := summary.CodeBlock(report)

		messages, err := thread.RecentMessages(ctx, statusScanWindow)
		if err != nil {
			return apperr.Wrap(apperr.KindCollaborator, err, "Could not read the thread history.")
		}

		if pinned := findStatusMessage(messages); pinned != nil {
			if pinned.Content == content {
				return nil
			}
			if err := thread.EditMessage(ctx, pinned.ID, content); err != nil {
				return apperr.Wrap(apperr.KindCollaborator, err, "Could not update the status message.")
			}
			return nil
		}

		messageID, err := thread.SendMessage(ctx, content)
		if err != nil {
			return apperr.Wrap(apperr.KindCollaborator, err, "Could not post the status message.")
		}
		if err := thread.PinMessage(ctx, messageID); err != nil {
			return apperr.Wrap(apperr.KindCollaborator, err, "Could not pin the status message.")
		}
		return nil
	})
}

// findStatusMessage returns the newest pinned message the bot authored.
func findStatusMessage(messages []secondary.ChatMessage) *secondary.ChatMessage {
	for i := range messages {
		if messages[i].Pinned && messages[i].FromSelf {
			return &messages[i]
		}
	}
	return nil
}

// Ensure StatusSyncServiceImpl implements the interface
var _ primary.StatusSyncService = (*StatusSyncServiceImpl)(nil)
