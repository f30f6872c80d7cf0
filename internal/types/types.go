package types

import (
	"time"
)

// StatusKind is a user's presence status selector. Every kind except
// StatusCustom is a fixed enumeration value; StatusCustom carries a
// free-text string alongside it.
type StatusKind string

const (
	StatusAvailable   StatusKind = "available"
	StatusBusy        StatusKind = "busy"
	StatusAtSchool    StatusKind = "at_school"
	StatusAtTheMovies StatusKind = "at_the_movies"
	StatusAtWork      StatusKind = "at_work"
	StatusLowBattery  StatusKind = "low_battery"
	StatusSleeping    StatusKind = "sleeping"
	StatusCustom      StatusKind = "custom"
)

// Valid reports whether k is one of the defined status kinds.
func (k StatusKind) Valid() bool {
	switch k {
	case StatusAvailable, StatusBusy, StatusAtSchool, StatusAtTheMovies,
		StatusAtWork, StatusLowBattery, StatusSleeping, StatusCustom:
		return true
	}
	return false
}

// Status is a tagged variant: Custom is only meaningful while Kind is
// StatusCustom and is cleared whenever the kind switches away.
type Status struct {
	Kind   StatusKind `json:"kind"`
	Custom string     `json:"custom,omitempty"`
}

type User struct {
	Id       int    `json:"id"`
	Username string `json:"username"`
	Online   bool   `json:"online"`
	Status   Status `json:"status"`
}

// MessageKind tags a message's content type. Plain text is the default.
type MessageKind string

const (
	MessageText  MessageKind = "text"
	MessageImage MessageKind = "image"
	MessageFile  MessageKind = "file"
)

type Message struct {
	Id        string      `json:"id"`
	SenderId  int         `json:"sender_id"`
	Sender    string      `json:"sender"`
	Content   string      `json:"content"`
	Kind      MessageKind `json:"kind"`
	Timestamp time.Time   `json:"timestamp"`
}

type Room struct {
	Id         int       `json:"id"`
	ExternalId string    `json:"external_id"`
	UserIds    [2]int    `json:"user_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

type Group struct {
	Id             int       `json:"id"`
	ExternalId     string    `json:"external_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	CreatorId      int       `json:"creator_id"`
	AdminIds       []int     `json:"admin_ids"`
	ParticipantIds []int     `json:"participant_ids"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationKind discriminates the entries of a user's conversation
// list, which mixes direct rooms and groups.
type ConversationKind string

const (
	ConversationDirect ConversationKind = "direct"
	ConversationGroup  ConversationKind = "group"
)

// Conversation is a tagged reference to either a direct room or a group.
// Exactly one of Room and Group is set, matching Kind.
type Conversation struct {
	Kind  ConversationKind `json:"kind"`
	Room  *Room            `json:"room,omitempty"`
	Group *Group           `json:"group,omitempty"`
}
