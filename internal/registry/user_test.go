package registry

import (
	"testing"

	"github.com/jfendler/go-chatregistry/internal/types"
	"github.com/stretchr/testify/assert"
)

func Test_newUser_defaults(t *testing.T) {
	u := newUser(1000, "alice")

	assert.Equal(t, 1000, u.id, "expected assigned id")
	assert.Equal(t, "alice", u.username, "expected username to match")
	assert.True(t, u.online, "expected new user to be online")
	assert.Equal(t, types.StatusAvailable, u.status.Kind, "expected default status to be available")
	assert.Empty(t, u.contacts, "expected empty contact list")
	assert.Empty(t, u.roomIds, "expected empty room index")
	assert.Empty(t, u.groupIds, "expected empty group index")
}

func Test_user_setStatus(t *testing.T) {
	u := newUser(1000, "alice")

	u.setStatus(types.StatusCustom, "at the gym")
	assert.Equal(t, types.StatusCustom, u.status.Kind)
	assert.Equal(t, "at the gym", u.status.Custom, "expected custom text to be retained")

	u.setStatus(types.StatusBusy, "ignored")
	assert.Equal(t, types.StatusBusy, u.status.Kind)
	assert.Empty(t, u.status.Custom, "expected custom text to be cleared when switching away from custom")
}

func Test_user_contacts(t *testing.T) {
	u := newUser(1000, "alice")

	t.Run("add self fails", func(t *testing.T) {
		err := u.addContact(u.id)
		assert.ErrorIs(t, err, ErrInvalidArgument, "expected invalid argument for self contact")
	})

	t.Run("add and re-add", func(t *testing.T) {
		assert.NoError(t, u.addContact(1001))
		err := u.addContact(1001)
		assert.ErrorIs(t, err, ErrAlreadyExists, "expected duplicate contact to fail")
		assert.Len(t, u.contacts, 1, "expected exactly one contact after duplicate add")
	})

	t.Run("has and list", func(t *testing.T) {
		assert.True(t, u.hasContact(1001))
		assert.False(t, u.hasContact(1002))

		ids := u.contactIds()
		assert.Equal(t, []int{1001}, ids)
		assert.Equal(t, 1, u.contactCount())

		// The returned slice is a copy.
		ids[0] = 9999
		assert.True(t, u.hasContact(1001), "expected mutation of the copy not to affect the contact list")
	})

	t.Run("remove", func(t *testing.T) {
		assert.True(t, u.removeContact(1001), "expected removal of present contact to report true")
		assert.False(t, u.removeContact(1001), "expected removal of absent contact to be a no-op")
		assert.Empty(t, u.contacts)
	})
}

func Test_user_membershipIndexes(t *testing.T) {
	u := newUser(1000, "alice")

	assert.True(t, u.addRoom(2000))
	assert.False(t, u.addRoom(2000), "expected duplicate room registration to fail")
	assert.True(t, u.addGroup(3000))
	assert.False(t, u.addGroup(3000), "expected duplicate group registration to fail")

	assert.Equal(t, []int{2000}, u.roomIds)
	assert.Equal(t, []int{3000}, u.groupIds)

	assert.True(t, u.removeRoom(2000))
	assert.False(t, u.removeRoom(2000), "expected removing absent room to report false")
	assert.True(t, u.removeGroup(3000))
	assert.False(t, u.removeGroup(3000), "expected removing absent group to report false")
}
