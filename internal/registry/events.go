package registry

import "time"

// Op tags the kind of mutation an Event reports.
type Op string

const (
	OpUserRegistered     Op = "user_registered"
	OpProfileUpdated     Op = "profile_updated"
	OpStatusChanged      Op = "status_changed"
	OpPresenceChanged    Op = "presence_changed"
	OpContactAdded       Op = "contact_added"
	OpContactRemoved     Op = "contact_removed"
	OpRoomCreated        Op = "room_created"
	OpDirectMessageSent  Op = "direct_message_sent"
	OpGroupCreated       Op = "group_created"
	OpParticipantAdded   Op = "participant_added"
	OpParticipantRemoved Op = "participant_removed"
	OpAdminAdded         Op = "admin_added"
	OpAdminRemoved       Op = "admin_removed"
	OpGroupMessageSent   Op = "group_message_sent"
)

// Event describes a single successful mutation. Ids identify the
// affected entities; fields not relevant to the operation are zero.
type Event struct {
	Op        Op        `json:"op"`
	UserId    int       `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	RoomId    int       `json:"room_id,omitempty"`
	GroupId   int       `json:"group_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Observer receives one Event per successful mutation. Delivery is
// synchronous from the mutator's goroutine but happens outside the
// registry lock, so an observer may call back into the Registry.
type Observer func(Event)

// RegisterObserver appends fn to the observer list. Observers cannot be
// removed; the list only grows for the registry's lifetime.
func (r *Registry) RegisterObserver(fn Observer) {
	if fn == nil {
		return
	}
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, fn)
}

// notify fans ev out to every registered observer. A panicking observer
// is logged and skipped; it never fails the mutation or starves the
// remaining observers.
func (r *Registry) notify(ev Event) {
	r.obsMu.RLock()
	observers := make([]Observer, len(r.observers))
	copy(observers, r.observers)
	r.obsMu.RUnlock()

	for _, fn := range observers {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.log.Printf("observer panic on %s: %v", ev.Op, rec)
				}
			}()
			fn(ev)
		}()
	}
}

func event(op Op) Event {
	return Event{Op: op, Timestamp: Now()}
}
