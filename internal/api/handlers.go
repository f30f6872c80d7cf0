package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jfendler/go-chatregistry/internal/types"
)

type RegisterUserRequest struct {
	Username string `json:"username"`
}

type UpdateProfileRequest struct {
	OldName    string           `json:"old_name"`
	NewName    string           `json:"new_name"`
	Status     types.StatusKind `json:"status"`
	CustomText string           `json:"custom_text"`
}

type SetStatusRequest struct {
	Username   string           `json:"username"`
	Status     types.StatusKind `json:"status"`
	CustomText string           `json:"custom_text"`
}

type SetPresenceRequest struct {
	Username string `json:"username"`
	Online   bool   `json:"online"`
}

type ContactRequest struct {
	Owner   string `json:"owner"`
	Contact string `json:"contact"`
}

type EnsureRoomRequest struct {
	UserA string `json:"user_a"`
	UserB string `json:"user_b"`
}

type SendMessageRequest struct {
	RoomId  int               `json:"room_id"`
	Sender  string            `json:"sender"`
	Content string            `json:"content"`
	Kind    types.MessageKind `json:"kind,omitempty"`
}

type CreateGroupRequest struct {
	Creator     string `json:"creator"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type GroupMemberRequest struct {
	GroupId int    `json:"group_id"`
	Actor   string `json:"actor"`
	Target  string `json:"target"`
}

type GroupMessageRequest struct {
	GroupId int               `json:"group_id"`
	Sender  string            `json:"sender"`
	Content string            `json:"content"`
	Kind    types.MessageKind `json:"kind,omitempty"`
}

func (s *App) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *App) writeError(w http.ResponseWriter, err error) {
	errResp := fromRegistryError(err)
	if errResp.StatusCode >= http.StatusInternalServerError {
		s.log.Printf("internal error: %v", err)
	}
	s.writeJson(w, errResp.StatusCode, errResp)
}

func (s *App) registerUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.reg.RegisterUser(req.Username)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, user)
}

func (s *App) getUser(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.reg.User(name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, user)
}

func (s *App) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	newName, err := s.reg.UpdateProfile(req.OldName, req.NewName, req.Status, req.CustomText)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"username": newName})
}

func (s *App) setStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.reg.SetStatus(req.Username, req.Status, req.CustomText); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *App) setPresence(w http.ResponseWriter, r *http.Request) {
	var req SetPresenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.reg.SetOnline(req.Username, req.Online); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *App) addContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.reg.AddContact(req.Contact, req.Owner); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, nil)
}

func (s *App) removeContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	removed, err := s.reg.RemoveContact(req.Contact, req.Owner)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (s *App) listContacts(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	contacts, err := s.reg.Contacts(owner)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, contacts)
}

func (s *App) ensureRoom(w http.ResponseWriter, r *http.Request) {
	var req EnsureRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	roomId, err := s.reg.EnsureDirectRoom(req.UserA, req.UserB)
	if err != nil {
		s.writeError(w, err)
		return
	}

	room, err := s.reg.DirectRoom(roomId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, room)
}

func (s *App) getRoom(w http.ResponseWriter, r *http.Request) {
	roomId, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.reg.DirectRoom(roomId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, room)
}

func (s *App) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.reg.SendDirectMessage(req.RoomId, req.Sender, req.Content, req.Kind); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, nil)
}

func (s *App) getMessages(w http.ResponseWriter, r *http.Request) {
	roomId, err := strconv.Atoi(r.URL.Query().Get("room_id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msgs, err := s.reg.DirectMessages(roomId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, msgs)
}

func (s *App) createGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	groupId, err := s.reg.CreateGroup(req.Creator, req.Name, req.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}

	group, err := s.reg.Group(groupId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, group)
}

func (s *App) getGroup(w http.ResponseWriter, r *http.Request) {
	groupId, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	group, err := s.reg.Group(groupId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, group)
}

func (s *App) addParticipant(w http.ResponseWriter, r *http.Request) {
	var req GroupMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.reg.AddGroupParticipant(req.GroupId, req.Actor, req.Target); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, nil)
}

func (s *App) removeParticipant(w http.ResponseWriter, r *http.Request) {
	var req GroupMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.reg.RemoveGroupParticipant(req.GroupId, req.Actor, req.Target); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *App) listParticipants(w http.ResponseWriter, r *http.Request) {
	groupId, err := strconv.Atoi(r.URL.Query().Get("group_id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	participants, err := s.reg.GroupParticipants(groupId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, participants)
}

func (s *App) listAdmins(w http.ResponseWriter, r *http.Request) {
	groupId, err := strconv.Atoi(r.URL.Query().Get("group_id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	admins, err := s.reg.GroupAdmins(groupId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, admins)
}

func (s *App) promoteAdmin(w http.ResponseWriter, r *http.Request) {
	var req GroupMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.reg.PromoteAdmin(req.GroupId, req.Actor, req.Target); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, nil)
}

func (s *App) demoteAdmin(w http.ResponseWriter, r *http.Request) {
	var req GroupMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.reg.DemoteAdmin(req.GroupId, req.Actor, req.Target); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *App) sendGroupMessage(w http.ResponseWriter, r *http.Request) {
	var req GroupMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.reg.SendGroupMessage(req.GroupId, req.Sender, req.Content, req.Kind); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, nil)
}

func (s *App) getGroupMessages(w http.ResponseWriter, r *http.Request) {
	groupId, err := strconv.Atoi(r.URL.Query().Get("group_id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msgs, err := s.reg.GroupMessages(groupId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, msgs)
}

func (s *App) listConversations(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("user")
	if name == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	conversations, err := s.reg.ConversationsForUser(name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, conversations)
}
