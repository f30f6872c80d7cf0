package registry

import (
	"testing"

	"github.com/jfendler/go-chatregistry/internal/types"
	"github.com/stretchr/testify/assert"
)

func Test_chatRoom_pair(t *testing.T) {
	alice := newUser(1000, "alice")
	bob := newUser(1001, "bob")
	room := newChatRoom(2000, "EoGKUXPHgz", alice, bob)

	assert.True(t, room.hasUser(alice.id))
	assert.True(t, room.hasUser(bob.id))
	assert.False(t, room.hasUser(1002))

	assert.True(t, room.isPair(alice.id, bob.id), "expected pair match in construction order")
	assert.True(t, room.isPair(bob.id, alice.id), "expected pair match in reversed order")
	assert.False(t, room.isPair(alice.id, 1002))
}

func Test_chatRoom_messages(t *testing.T) {
	alice := newUser(1000, "alice")
	bob := newUser(1001, "bob")
	room := newChatRoom(2000, "EoGKUXPHgz", alice, bob)

	msgs := room.listMessages()
	assert.NotNil(t, msgs, "expected empty slice, not nil, for an empty log")
	assert.Empty(t, msgs)

	m1 := newMessage(alice, "hi", types.MessageText)
	m2 := newMessage(bob, "yo", "")
	m3 := newMessage(alice, "pic", types.MessageImage)
	room.appendMessage(m1)
	room.appendMessage(m2)
	room.appendMessage(m3)

	msgs = room.listMessages()
	assert.Len(t, msgs, 3)
	assert.Equal(t, []string{"hi", "yo", "pic"}, []string{msgs[0].Content, msgs[1].Content, msgs[2].Content},
		"expected messages in append order")
	assert.Equal(t, types.MessageText, msgs[1].Kind, "expected empty kind to default to text")
	assert.Equal(t, types.MessageImage, msgs[2].Kind)
	assert.NotEmpty(t, msgs[0].Id, "expected message id to be assigned")
	assert.Equal(t, "alice", msgs[0].Sender)
	assert.False(t, msgs[0].Timestamp.IsZero(), "expected server-assigned timestamp")

	// The returned slice is a copy of the log.
	msgs[0].Content = "tampered"
	assert.Equal(t, "hi", room.listMessages()[0].Content)
}
