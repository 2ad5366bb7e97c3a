package repositories

import (
	"context"

	"github.com/postureperfect/avatar-server/domain/entities"
)

// ReplyGenerator abstracts the generative-text provider that turns a user
// message into a reply text plus a body-animation cue.
type ReplyGenerator interface {
	// GenerateReply prompts the model with the user message and the allowed
	// animation vocabulary. The animation in the returned reply is always a
	// member of animations.
	GenerateReply(ctx context.Context, userMessage string, animations []string) (entities.GeneratedReply, error)
}
