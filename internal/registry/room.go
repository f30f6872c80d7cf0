package registry

import (
	"slices"
	"time"

	"github.com/jfendler/go-chatregistry/internal/types"
)

// chatRoom is a direct two-party conversation. The Registry guarantees
// at most one room per unordered user pair and pre-verifies sender
// membership before appending; the entity itself only keeps the log.
type chatRoom struct {
	id         int
	externalId string
	userA      int
	userB      int
	createdAt  time.Time
	messages   []types.Message
}

func newChatRoom(id int, externalId string, userA, userB *user) *chatRoom {
	return &chatRoom{
		id:         id,
		externalId: externalId,
		userA:      userA.id,
		userB:      userB.id,
		createdAt:  Now(),
	}
}

func (r *chatRoom) hasUser(id int) bool {
	return r.userA == id || r.userB == id
}

// isPair matches the unordered user pair (a, b).
func (r *chatRoom) isPair(a, b int) bool {
	return (r.userA == a && r.userB == b) || (r.userA == b && r.userB == a)
}

func (r *chatRoom) appendMessage(msg types.Message) {
	r.messages = append(r.messages, msg)
}

// listMessages returns the log in append order, never nil.
func (r *chatRoom) listMessages() []types.Message {
	if len(r.messages) == 0 {
		return []types.Message{}
	}
	return slices.Clone(r.messages)
}

func (r *chatRoom) toType() types.Room {
	return types.Room{
		Id:         r.id,
		ExternalId: r.externalId,
		UserIds:    [2]int{r.userA, r.userB},
		CreatedAt:  r.createdAt,
	}
}
