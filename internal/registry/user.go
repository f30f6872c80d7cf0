package registry

import (
	"slices"

	"github.com/jfendler/go-chatregistry/internal/types"
)

// user is the internal user entity. Its contact list and membership
// indexes hold ids only; resolving an id back to an entity always goes
// through the Registry's tables. The entity never enforces cross-user
// invariants such as global username uniqueness.
type user struct {
	id       int
	username string
	online   bool
	status   types.Status

	// contacts preserves insertion order. Not required to be
	// symmetric: adding A→B does not imply B→A.
	contacts []int

	// Reverse membership indexes, kept in lockstep with the
	// corresponding room/group membership sets.
	roomIds  []int
	groupIds []int
}

func newUser(id int, username string) *user {
	return &user{
		id:       id,
		username: username,
		online:   true,
		status:   types.Status{Kind: types.StatusAvailable},
	}
}

// setStatus switches the status selector. The free-text value survives
// only while the selector is StatusCustom.
func (u *user) setStatus(kind types.StatusKind, custom string) {
	if kind == types.StatusCustom {
		u.status = types.Status{Kind: kind, Custom: custom}
		return
	}
	u.status = types.Status{Kind: kind}
}

func (u *user) addContact(id int) error {
	if id == u.id {
		return ErrInvalidArgument.WithMessage("cannot add self as contact")
	}
	if slices.Contains(u.contacts, id) {
		return ErrAlreadyExists.WithMessage("contact already exists")
	}
	u.contacts = append(u.contacts, id)
	return nil
}

// removeContact reports whether the contact was present. Removing an
// absent contact is a documented no-op.
func (u *user) removeContact(id int) bool {
	i := slices.Index(u.contacts, id)
	if i < 0 {
		return false
	}
	u.contacts = slices.Delete(u.contacts, i, i+1)
	return true
}

func (u *user) hasContact(id int) bool {
	return slices.Contains(u.contacts, id)
}

func (u *user) contactIds() []int {
	return slices.Clone(u.contacts)
}

func (u *user) contactCount() int {
	return len(u.contacts)
}

func (u *user) addRoom(id int) bool {
	if slices.Contains(u.roomIds, id) {
		return false
	}
	u.roomIds = append(u.roomIds, id)
	return true
}

func (u *user) removeRoom(id int) bool {
	i := slices.Index(u.roomIds, id)
	if i < 0 {
		return false
	}
	u.roomIds = slices.Delete(u.roomIds, i, i+1)
	return true
}

func (u *user) addGroup(id int) bool {
	if slices.Contains(u.groupIds, id) {
		return false
	}
	u.groupIds = append(u.groupIds, id)
	return true
}

func (u *user) removeGroup(id int) bool {
	i := slices.Index(u.groupIds, id)
	if i < 0 {
		return false
	}
	u.groupIds = slices.Delete(u.groupIds, i, i+1)
	return true
}

func (u *user) toType() types.User {
	return types.User{
		Id:       u.id,
		Username: u.username,
		Online:   u.online,
		Status:   u.status,
	}
}
