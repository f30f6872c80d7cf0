package registry

import (
	"slices"
	"time"

	"github.com/jfendler/go-chatregistry/internal/types"
)

// groupRoom is a named multi-party conversation with creator, admin and
// participant roles. Invariants held after every operation: the creator
// is in both role lists for the group's lifetime, and admins are always
// a subset of participants. Mutations update the target user's reverse
// membership index in the same step, so the two sides never diverge.
type groupRoom struct {
	id           int
	externalId   string
	creatorId    int
	name         string
	description  string
	admins       []int
	participants []int
	createdAt    time.Time
	messages     []types.Message
}

// newGroupRoom constructs a group and registers it in the creator's
// reverse membership index. Construction either fully completes or
// leaves the creator untouched.
func newGroupRoom(id int, externalId string, creator *user, name, description string) (*groupRoom, error) {
	if creator == nil {
		return nil, ErrInvalidArgument.WithMessage("group creator is required")
	}
	if name == "" {
		return nil, ErrInvalidArgument.WithMessage("group name is required")
	}

	g := &groupRoom{
		id:           id,
		externalId:   externalId,
		creatorId:    creator.id,
		name:         name,
		description:  description,
		admins:       []int{creator.id},
		participants: []int{creator.id},
		createdAt:    Now(),
	}

	if !creator.addGroup(g.id) {
		return nil, ErrIllegalState.WithMessage("could not register group with creator %q", creator.username)
	}
	return g, nil
}

func (g *groupRoom) isAdmin(userId int) bool {
	return slices.Contains(g.admins, userId)
}

func (g *groupRoom) isParticipant(userId int) bool {
	return slices.Contains(g.participants, userId)
}

func (g *groupRoom) addParticipant(u *user) error {
	if g.isParticipant(u.id) {
		return ErrAlreadyMember.WithMessage("%q is already a participant of %q", u.username, g.name)
	}
	if !u.addGroup(g.id) {
		return ErrIllegalState.WithMessage("could not register group with user %q", u.username)
	}
	g.participants = append(g.participants, u.id)
	return nil
}

// removeParticipant removes target from the group. Admins may remove
// anyone but the creator; any participant may remove themselves. An
// admin target is demoted before removal so admins stay a subset of
// participants.
func (g *groupRoom) removeParticipant(remover, target *user) error {
	if !g.isAdmin(remover.id) && remover.id != target.id {
		return ErrPermissionDenied.WithMessage("only admins can remove other participants")
	}
	if target.id == g.creatorId {
		return ErrProtectedEntity.WithMessage("the group creator cannot be removed")
	}
	if !g.isParticipant(target.id) {
		return ErrNotAMember.WithMessage("%q is not a participant of %q", target.username, g.name)
	}

	target.removeGroup(g.id)

	if i := slices.Index(g.admins, target.id); i >= 0 {
		g.admins = slices.Delete(g.admins, i, i+1)
	}

	i := slices.Index(g.participants, target.id)
	g.participants = slices.Delete(g.participants, i, i+1)
	return nil
}

func (g *groupRoom) addAdmin(promoter, target *user) error {
	if !g.isAdmin(promoter.id) {
		return ErrPermissionDenied.WithMessage("only admins can promote participants")
	}
	if !g.isParticipant(target.id) {
		return ErrNotAMember.WithMessage("%q is not a participant of %q", target.username, g.name)
	}
	if g.isAdmin(target.id) {
		return ErrAlreadyAdmin.WithMessage("%q is already an admin of %q", target.username, g.name)
	}
	g.admins = append(g.admins, target.id)
	return nil
}

func (g *groupRoom) removeAdmin(demoter, target *user) error {
	if !g.isAdmin(demoter.id) {
		return ErrPermissionDenied.WithMessage("only admins can revoke admin rights")
	}
	if target.id == g.creatorId {
		return ErrProtectedEntity.WithMessage("the group creator cannot be demoted")
	}
	if !g.isAdmin(target.id) {
		return ErrNotAnAdmin.WithMessage("%q is not an admin of %q", target.username, g.name)
	}
	i := slices.Index(g.admins, target.id)
	g.admins = slices.Delete(g.admins, i, i+1)
	return nil
}

func (g *groupRoom) addMessage(sender *user, content string, kind types.MessageKind) (types.Message, error) {
	if !g.isParticipant(sender.id) {
		return types.Message{}, ErrPermissionDenied.WithMessage("only participants can send messages to %q", g.name)
	}
	msg := newMessage(sender, content, kind)
	g.messages = append(g.messages, msg)
	return msg, nil
}

func (g *groupRoom) listMessages() []types.Message {
	if len(g.messages) == 0 {
		return []types.Message{}
	}
	return slices.Clone(g.messages)
}

func (g *groupRoom) toType() types.Group {
	return types.Group{
		Id:             g.id,
		ExternalId:     g.externalId,
		Name:           g.name,
		Description:    g.description,
		CreatorId:      g.creatorId,
		AdminIds:       slices.Clone(g.admins),
		ParticipantIds: slices.Clone(g.participants),
		CreatedAt:      g.createdAt,
	}
}
