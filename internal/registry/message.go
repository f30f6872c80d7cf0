package registry

import (
	"time"

	"github.com/google/uuid"
	"github.com/jfendler/go-chatregistry/internal/types"
)

// Now returns the server-assigned message timestamp, rounded to
// millisecond precision so encoded timestamps compare equal after a
// JSON round trip.
func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}

// newMessage builds an immutable message entry. The sender's username
// is captured at creation time so later renames do not rewrite history.
func newMessage(sender *user, content string, kind types.MessageKind) types.Message {
	if kind == "" {
		kind = types.MessageText
	}
	return types.Message{
		Id:        uuid.NewString(),
		SenderId:  sender.id,
		Sender:    sender.username,
		Content:   content,
		Kind:      kind,
		Timestamp: Now(),
	}
}
