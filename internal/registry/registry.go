// Package registry implements an in-memory conversation registry: it
// tracks users, their direct and group conversations, membership and
// administration rights, and message history, and fans out a mutation
// event to registered observers after every state-changing operation.
//
// The registry is the single composition root. It exclusively owns the
// identifier-indexed entity tables; entities reference each other by id
// only and are resolved through those tables on every lookup.
package registry

import (
	"log"
	"sync"

	"github.com/jfendler/go-chatregistry/internal/types"
	"github.com/teris-io/shortid"
)

type Registry struct {
	log *log.Logger

	// mu guards every entity table and all entity state. Mutations
	// take the write lock; reads take the read lock and return
	// copies, so no caller ever observes a partially-applied
	// mutation. Observer fan-out happens after mu is released.
	mu          sync.RWMutex
	usersByName map[string]*user
	usersById   map[int]*user
	rooms       map[int]*chatRoom
	groups      map[int]*groupRoom

	userIds  *idGenerator
	roomIds  *idGenerator
	groupIds *idGenerator

	// generateShortId produces external room/group ids. Overridable
	// in tests.
	generateShortId func() (string, error)

	obsMu     sync.RWMutex
	observers []Observer
}

func NewRegistry(logger *log.Logger) *Registry {
	return &Registry{
		log:             logger,
		usersByName:     make(map[string]*user),
		usersById:       make(map[int]*user),
		rooms:           make(map[int]*chatRoom),
		groups:          make(map[int]*groupRoom),
		userIds:         newIdGenerator(firstId),
		roomIds:         newIdGenerator(firstId),
		groupIds:        newIdGenerator(firstId),
		generateShortId: shortid.Generate,
	}
}

// userByName resolves a username to the live entity. Callers must hold mu.
func (r *Registry) userByName(name string) (*user, error) {
	u, ok := r.usersByName[name]
	if !ok {
		return nil, ErrNotFound.WithMessage("user %q not found", name)
	}
	return u, nil
}

func (r *Registry) roomById(id int) (*chatRoom, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, ErrNotFound.WithMessage("room %d not found", id)
	}
	return room, nil
}

func (r *Registry) groupById(id int) (*groupRoom, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, ErrNotFound.WithMessage("group %d not found", id)
	}
	return g, nil
}

// RegisterUser creates and indexes a new user. Usernames are globally
// unique among live users; ids are assigned once and never reused.
func (r *Registry) RegisterUser(username string) (types.User, error) {
	if username == "" {
		return types.User{}, ErrInvalidArgument.WithMessage("username is required")
	}

	r.mu.Lock()
	if _, ok := r.usersByName[username]; ok {
		r.mu.Unlock()
		return types.User{}, ErrAlreadyExists.WithMessage("user %q already exists", username)
	}

	u := newUser(r.userIds.Next(), username)
	r.usersByName[username] = u
	r.usersById[u.id] = u
	result := u.toType()
	r.mu.Unlock()

	ev := event(OpUserRegistered)
	ev.UserId = result.Id
	ev.Username = result.Username
	r.notify(ev)

	return result, nil
}

func (r *Registry) User(name string) (types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, err := r.userByName(name)
	if err != nil {
		return types.User{}, err
	}
	return u.toType(), nil
}

func (r *Registry) UserById(id int) (types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.usersById[id]
	if !ok {
		return types.User{}, ErrNotFound.WithMessage("user %d not found", id)
	}
	return u.toType(), nil
}

// UpdateProfile renames a user and/or changes their status in one
// step, re-indexing the name table when renaming. The custom text is
// retained only when the new status is the free-text variant. Returns
// the resulting username.
func (r *Registry) UpdateProfile(oldName, newName string, kind types.StatusKind, custom string) (string, error) {
	if newName == "" {
		return "", ErrInvalidArgument.WithMessage("username is required")
	}
	if !kind.Valid() {
		return "", ErrInvalidArgument.WithMessage("unknown status kind %q", kind)
	}

	r.mu.Lock()
	u, err := r.userByName(oldName)
	if err != nil {
		r.mu.Unlock()
		return "", err
	}

	if oldName != newName {
		if _, ok := r.usersByName[newName]; ok {
			r.mu.Unlock()
			return "", ErrAlreadyExists.WithMessage("user %q already exists", newName)
		}
		delete(r.usersByName, oldName)
		u.username = newName
		r.usersByName[newName] = u
	}

	u.setStatus(kind, custom)
	result := u.username
	userId := u.id
	r.mu.Unlock()

	ev := event(OpProfileUpdated)
	ev.UserId = userId
	ev.Username = result
	r.notify(ev)

	return result, nil
}

// SetStatus changes a user's status without renaming.
func (r *Registry) SetStatus(name string, kind types.StatusKind, custom string) error {
	if !kind.Valid() {
		return ErrInvalidArgument.WithMessage("unknown status kind %q", kind)
	}

	r.mu.Lock()
	u, err := r.userByName(name)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	u.setStatus(kind, custom)
	userId := u.id
	r.mu.Unlock()

	ev := event(OpStatusChanged)
	ev.UserId = userId
	ev.Username = name
	r.notify(ev)

	return nil
}

func (r *Registry) SetOnline(name string, online bool) error {
	r.mu.Lock()
	u, err := r.userByName(name)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	u.online = online
	userId := u.id
	r.mu.Unlock()

	ev := event(OpPresenceChanged)
	ev.UserId = userId
	ev.Username = name
	r.notify(ev)

	return nil
}

// AddContact adds contactName to ownerName's contact list. The graph is
// directed: the reverse edge is not created.
func (r *Registry) AddContact(contactName, ownerName string) error {
	r.mu.Lock()
	contact, err := r.userByName(contactName)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	owner, err := r.userByName(ownerName)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	if err := owner.addContact(contact.id); err != nil {
		r.mu.Unlock()
		return err
	}
	ownerId := owner.id
	r.mu.Unlock()

	ev := event(OpContactAdded)
	ev.UserId = ownerId
	ev.Username = ownerName
	r.notify(ev)

	return nil
}

// RemoveContact reports whether the contact was present. Removing an
// absent contact is a no-op and raises no notification.
func (r *Registry) RemoveContact(contactName, ownerName string) (bool, error) {
	r.mu.Lock()
	contact, err := r.userByName(contactName)
	if err != nil {
		r.mu.Unlock()
		return false, err
	}
	owner, err := r.userByName(ownerName)
	if err != nil {
		r.mu.Unlock()
		return false, err
	}

	removed := owner.removeContact(contact.id)
	ownerId := owner.id
	r.mu.Unlock()

	if !removed {
		return false, nil
	}

	ev := event(OpContactRemoved)
	ev.UserId = ownerId
	ev.Username = ownerName
	r.notify(ev)

	return true, nil
}

func (r *Registry) HasContact(contactName, ownerName string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contact, err := r.userByName(contactName)
	if err != nil {
		return false, err
	}
	owner, err := r.userByName(ownerName)
	if err != nil {
		return false, err
	}
	return owner.hasContact(contact.id), nil
}

func (r *Registry) Contacts(ownerName string) ([]types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, err := r.userByName(ownerName)
	if err != nil {
		return nil, err
	}

	return r.resolveUsers(owner.contacts), nil
}

// EnsureDirectRoom returns the id of the direct room for the unordered
// pair (nameA, nameB), creating it on first use. The check-then-create
// sequence runs under the write lock, so two concurrent calls for the
// same pair always converge on one room.
func (r *Registry) EnsureDirectRoom(nameA, nameB string) (int, error) {
	r.mu.Lock()
	userA, err := r.userByName(nameA)
	if err != nil {
		r.mu.Unlock()
		return 0, err
	}
	userB, err := r.userByName(nameB)
	if err != nil {
		r.mu.Unlock()
		return 0, err
	}
	if userA.id == userB.id {
		r.mu.Unlock()
		return 0, ErrInvalidArgument.WithMessage("a direct room requires two distinct users")
	}

	for _, room := range r.rooms {
		if room.isPair(userA.id, userB.id) {
			id := room.id
			r.mu.Unlock()
			return id, nil
		}
	}

	externalId, err := r.generateShortId()
	if err != nil {
		r.mu.Unlock()
		return 0, ErrIllegalState.WithMessage("generate room id: %v", err)
	}

	room := newChatRoom(r.roomIds.Next(), externalId, userA, userB)
	if !userA.addRoom(room.id) || !userB.addRoom(room.id) {
		// Leave no partial registration behind.
		userA.removeRoom(room.id)
		userB.removeRoom(room.id)
		r.mu.Unlock()
		return 0, ErrIllegalState.WithMessage("could not register room with users")
	}
	r.rooms[room.id] = room
	roomId := room.id
	r.mu.Unlock()

	ev := event(OpRoomCreated)
	ev.RoomId = roomId
	r.notify(ev)

	return roomId, nil
}

func (r *Registry) DirectRoom(roomId int) (types.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, err := r.roomById(roomId)
	if err != nil {
		return types.Room{}, err
	}
	return room.toType(), nil
}

// SendDirectMessage appends a message to a direct room. The sender must
// be one of the room's two users; membership is verified here since the
// room entity does not check it.
func (r *Registry) SendDirectMessage(roomId int, senderName, content string, kind types.MessageKind) error {
	if content == "" {
		return ErrInvalidArgument.WithMessage("message content is required")
	}

	r.mu.Lock()
	room, err := r.roomById(roomId)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	sender, err := r.userByName(senderName)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	if !room.hasUser(sender.id) {
		r.mu.Unlock()
		return ErrPermissionDenied.WithMessage("%q is not part of room %d", senderName, roomId)
	}

	room.appendMessage(newMessage(sender, content, kind))
	senderId := sender.id
	r.mu.Unlock()

	ev := event(OpDirectMessageSent)
	ev.RoomId = roomId
	ev.UserId = senderId
	ev.Username = senderName
	r.notify(ev)

	return nil
}

// DirectMessages returns the room's log in append order, never nil.
func (r *Registry) DirectMessages(roomId int) ([]types.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, err := r.roomById(roomId)
	if err != nil {
		return nil, err
	}
	return room.listMessages(), nil
}

// CreateGroup creates a group with creatorName as its protected
// creator, first admin and first participant.
func (r *Registry) CreateGroup(creatorName, name, description string) (int, error) {
	r.mu.Lock()
	creator, err := r.userByName(creatorName)
	if err != nil {
		r.mu.Unlock()
		return 0, err
	}

	externalId, err := r.generateShortId()
	if err != nil {
		r.mu.Unlock()
		return 0, ErrIllegalState.WithMessage("generate group id: %v", err)
	}

	g, err := newGroupRoom(r.groupIds.Next(), externalId, creator, name, description)
	if err != nil {
		r.mu.Unlock()
		return 0, err
	}
	r.groups[g.id] = g
	groupId, creatorId := g.id, creator.id
	r.mu.Unlock()

	ev := event(OpGroupCreated)
	ev.GroupId = groupId
	ev.UserId = creatorId
	ev.Username = creatorName
	r.notify(ev)

	return groupId, nil
}

func (r *Registry) Group(groupId int) (types.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, err := r.groupById(groupId)
	if err != nil {
		return types.Group{}, err
	}
	return g.toType(), nil
}

// AddGroupParticipant adds targetName to the group. Only admins may add
// participants.
func (r *Registry) AddGroupParticipant(groupId int, adderName, targetName string) error {
	r.mu.Lock()
	g, err := r.groupById(groupId)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	adder, err := r.userByName(adderName)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	target, err := r.userByName(targetName)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	if !g.isAdmin(adder.id) {
		r.mu.Unlock()
		return ErrPermissionDenied.WithMessage("only admins can add participants")
	}
	if err := g.addParticipant(target); err != nil {
		r.mu.Unlock()
		return err
	}
	targetId := target.id
	r.mu.Unlock()

	ev := event(OpParticipantAdded)
	ev.GroupId = groupId
	ev.UserId = targetId
	ev.Username = targetName
	r.notify(ev)

	return nil
}

func (r *Registry) RemoveGroupParticipant(groupId int, removerName, targetName string) error {
	r.mu.Lock()
	g, err := r.groupById(groupId)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	remover, err := r.userByName(removerName)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	target, err := r.userByName(targetName)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	if err := g.removeParticipant(remover, target); err != nil {
		r.mu.Unlock()
		return err
	}
	targetId := target.id
	r.mu.Unlock()

	ev := event(OpParticipantRemoved)
	ev.GroupId = groupId
	ev.UserId = targetId
	ev.Username = targetName
	r.notify(ev)

	return nil
}

func (r *Registry) PromoteAdmin(groupId int, promoterName, targetName string) error {
	r.mu.Lock()
	g, err := r.groupById(groupId)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	promoter, err := r.userByName(promoterName)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	target, err := r.userByName(targetName)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	if err := g.addAdmin(promoter, target); err != nil {
		r.mu.Unlock()
		return err
	}
	targetId := target.id
	r.mu.Unlock()

	ev := event(OpAdminAdded)
	ev.GroupId = groupId
	ev.UserId = targetId
	ev.Username = targetName
	r.notify(ev)

	return nil
}

func (r *Registry) DemoteAdmin(groupId int, demoterName, targetName string) error {
	r.mu.Lock()
	g, err := r.groupById(groupId)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	demoter, err := r.userByName(demoterName)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	target, err := r.userByName(targetName)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	if err := g.removeAdmin(demoter, target); err != nil {
		r.mu.Unlock()
		return err
	}
	targetId := target.id
	r.mu.Unlock()

	ev := event(OpAdminRemoved)
	ev.GroupId = groupId
	ev.UserId = targetId
	ev.Username = targetName
	r.notify(ev)

	return nil
}

func (r *Registry) SendGroupMessage(groupId int, senderName, content string, kind types.MessageKind) error {
	if content == "" {
		return ErrInvalidArgument.WithMessage("message content is required")
	}

	r.mu.Lock()
	g, err := r.groupById(groupId)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	sender, err := r.userByName(senderName)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	if _, err := g.addMessage(sender, content, kind); err != nil {
		r.mu.Unlock()
		return err
	}
	senderId := sender.id
	r.mu.Unlock()

	ev := event(OpGroupMessageSent)
	ev.GroupId = groupId
	ev.UserId = senderId
	ev.Username = senderName
	r.notify(ev)

	return nil
}

func (r *Registry) GroupMessages(groupId int) ([]types.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, err := r.groupById(groupId)
	if err != nil {
		return nil, err
	}
	return g.listMessages(), nil
}

// GroupAdmins resolves the group's admin ids to users, in promotion
// order.
func (r *Registry) GroupAdmins(groupId int) ([]types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, err := r.groupById(groupId)
	if err != nil {
		return nil, err
	}
	return r.resolveUsers(g.admins), nil
}

// GroupParticipants resolves the group's participant ids to users, in
// join order.
func (r *Registry) GroupParticipants(groupId int) ([]types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, err := r.groupById(groupId)
	if err != nil {
		return nil, err
	}
	return r.resolveUsers(g.participants), nil
}

// resolveUsers maps ids to user DTOs, skipping dangling entries.
// Callers must hold mu.
func (r *Registry) resolveUsers(ids []int) []types.User {
	users := make([]types.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.usersById[id]; ok {
			users = append(users, u.toType())
		}
	}
	return users
}

func (r *Registry) IsGroupAdmin(groupId int, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, err := r.groupById(groupId)
	if err != nil {
		return false, err
	}
	u, err := r.userByName(name)
	if err != nil {
		return false, err
	}
	return g.isAdmin(u.id), nil
}

func (r *Registry) IsGroupParticipant(groupId int, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, err := r.groupById(groupId)
	if err != nil {
		return false, err
	}
	u, err := r.userByName(name)
	if err != nil {
		return false, err
	}
	return g.isParticipant(u.id), nil
}

// ConversationsForUser returns the user's direct rooms and groups as
// one tagged collection. No ordering is defined beyond direct rooms
// preceding groups.
func (r *Registry) ConversationsForUser(name string) ([]types.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, err := r.userByName(name)
	if err != nil {
		return nil, err
	}

	conversations := make([]types.Conversation, 0, len(u.roomIds)+len(u.groupIds))
	for _, id := range u.roomIds {
		if room, ok := r.rooms[id]; ok {
			dto := room.toType()
			conversations = append(conversations, types.Conversation{
				Kind: types.ConversationDirect,
				Room: &dto,
			})
		}
	}
	for _, id := range u.groupIds {
		if g, ok := r.groups[id]; ok {
			dto := g.toType()
			conversations = append(conversations, types.Conversation{
				Kind:  types.ConversationGroup,
				Group: &dto,
			})
		}
	}
	return conversations, nil
}

// UserRoomIds returns the ids of the user's direct rooms.
func (r *Registry) UserRoomIds(name string) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, err := r.userByName(name)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(u.roomIds))
	copy(ids, u.roomIds)
	return ids, nil
}

// UserGroupNames returns the names of the groups the user belongs to.
func (r *Registry) UserGroupNames(name string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, err := r.userByName(name)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(u.groupIds))
	for _, id := range u.groupIds {
		if g, ok := r.groups[id]; ok {
			names = append(names, g.name)
		}
	}
	return names, nil
}
