package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jfendler/go-chatregistry/internal/config"
	"github.com/jfendler/go-chatregistry/internal/registry"
	"github.com/jfendler/go-chatregistry/internal/stats"
	"github.com/jfendler/go-chatregistry/internal/testutil"
	"github.com/jfendler/go-chatregistry/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *registry.Registry) {
	t.Helper()

	mockStats := &stats.MockStatsUpdater{}
	mockStats.On("Incr", mock.Anything).Maybe()
	mockStats.On("Decr", mock.Anything).Maybe()

	cfg, err := config.NewConfig("localhost:0", "localhost:0", nil)
	require.NoError(t, err)

	reg := registry.NewRegistry(testutil.TestLogger(t))
	app := NewApp(http.NewServeMux(), testutil.TestLogger(t), reg, mockStats, cfg)
	return app, reg
}

func (s *App) doRequest(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	s.mux.Handler.ServeHTTP(rec, req)
	return rec
}

func TestRegisterUserHandler(t *testing.T) {
	app, _ := newTestApp(t)

	rec := app.doRequest(t, http.MethodPost, "/api/users", RegisterUserRequest{Username: "alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var user types.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
	assert.Equal(t, "alice", user.Username)
	assert.NotZero(t, user.Id)

	t.Run("duplicate username", func(t *testing.T) {
		rec := app.doRequest(t, http.MethodPost, "/api/users", RegisterUserRequest{Username: "alice"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		app.mux.Handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty username", func(t *testing.T) {
		rec := app.doRequest(t, http.MethodPost, "/api/users", RegisterUserRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetUserHandler(t *testing.T) {
	app, reg := newTestApp(t)
	_, err := reg.RegisterUser("alice")
	require.NoError(t, err)

	rec := app.doRequest(t, http.MethodGet, "/api/users?name=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var user types.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
	assert.Equal(t, "alice", user.Username)

	rec = app.doRequest(t, http.MethodGet, "/api/users?name=nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.doRequest(t, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProfileHandler(t *testing.T) {
	app, reg := newTestApp(t)
	_, err := reg.RegisterUser("alice")
	require.NoError(t, err)

	rec := app.doRequest(t, http.MethodPut, "/api/users", UpdateProfileRequest{
		OldName:    "alice",
		NewName:    "alice2",
		Status:     types.StatusCustom,
		CustomText: "at the gym",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "alice2", resp["username"])

	user, err := reg.User("alice2")
	require.NoError(t, err)
	assert.Equal(t, "at the gym", user.Status.Custom)

	rec = app.doRequest(t, http.MethodPut, "/api/users", UpdateProfileRequest{
		OldName: "nobody",
		NewName: "somebody",
		Status:  types.StatusAvailable,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactHandlers(t *testing.T) {
	app, reg := newTestApp(t)
	for _, name := range []string{"alice", "bob"} {
		_, err := reg.RegisterUser(name)
		require.NoError(t, err)
	}

	rec := app.doRequest(t, http.MethodPost, "/api/contacts", ContactRequest{Owner: "alice", Contact: "bob"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.doRequest(t, http.MethodPost, "/api/contacts", ContactRequest{Owner: "alice", Contact: "bob"})
	assert.Equal(t, http.StatusConflict, rec.Code, "expected duplicate contact to conflict")

	rec = app.doRequest(t, http.MethodPost, "/api/contacts", ContactRequest{Owner: "alice", Contact: "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "expected self contact to be rejected")

	rec = app.doRequest(t, http.MethodGet, "/api/contacts?owner=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var contacts []types.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&contacts))
	require.Len(t, contacts, 1)
	assert.Equal(t, "bob", contacts[0].Username)

	rec = app.doRequest(t, http.MethodDelete, "/api/contacts", ContactRequest{Owner: "alice", Contact: "bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	var removal map[string]bool
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&removal))
	assert.True(t, removal["removed"])

	rec = app.doRequest(t, http.MethodDelete, "/api/contacts", ContactRequest{Owner: "alice", Contact: "bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&removal))
	assert.False(t, removal["removed"], "expected second removal to report not removed")
}

func TestRoomAndMessageHandlers(t *testing.T) {
	app, reg := newTestApp(t)
	for _, name := range []string{"alice", "bob", "eve"} {
		_, err := reg.RegisterUser(name)
		require.NoError(t, err)
	}

	rec := app.doRequest(t, http.MethodPost, "/api/rooms", EnsureRoomRequest{UserA: "alice", UserB: "bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	var room types.Room
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&room))
	assert.NotZero(t, room.Id)
	assert.NotEmpty(t, room.ExternalId)

	rec = app.doRequest(t, http.MethodPost, "/api/rooms", EnsureRoomRequest{UserA: "bob", UserB: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	var sameRoom types.Room
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sameRoom))
	assert.Equal(t, room.Id, sameRoom.Id, "expected the reversed pair to resolve to the same room")

	rec = app.doRequest(t, http.MethodPost, "/api/rooms", EnsureRoomRequest{UserA: "alice", UserB: "nobody"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.doRequest(t, http.MethodPost, "/api/messages", SendMessageRequest{RoomId: room.Id, Sender: "alice", Content: "hi"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = app.doRequest(t, http.MethodPost, "/api/messages", SendMessageRequest{RoomId: room.Id, Sender: "bob", Content: "yo"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.doRequest(t, http.MethodPost, "/api/messages", SendMessageRequest{RoomId: room.Id, Sender: "eve", Content: "hi"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "expected non-member send to be forbidden")

	rec = app.doRequest(t, http.MethodGet, fmt.Sprintf("/api/messages?room_id=%d", room.Id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []types.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, "yo", msgs[1].Content)

	rec = app.doRequest(t, http.MethodGet, "/api/messages?room_id=notanumber", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGroupHandlers(t *testing.T) {
	app, reg := newTestApp(t)
	for _, name := range []string{"admin", "u1", "u2"} {
		_, err := reg.RegisterUser(name)
		require.NoError(t, err)
	}

	rec := app.doRequest(t, http.MethodPost, "/api/groups", CreateGroupRequest{Creator: "admin", Name: "dev", Description: "dev chatter"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var group types.Group
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&group))
	assert.Equal(t, "dev", group.Name)

	rec = app.doRequest(t, http.MethodPost, "/api/groups/participants", GroupMemberRequest{GroupId: group.Id, Actor: "admin", Target: "u1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.doRequest(t, http.MethodPost, "/api/groups/participants", GroupMemberRequest{GroupId: group.Id, Actor: "admin", Target: "u1"})
	assert.Equal(t, http.StatusConflict, rec.Code, "expected re-adding a member to conflict")

	rec = app.doRequest(t, http.MethodPost, "/api/groups/participants", GroupMemberRequest{GroupId: group.Id, Actor: "u1", Target: "u2"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "expected non-admin add to be forbidden")

	rec = app.doRequest(t, http.MethodDelete, "/api/groups/participants", GroupMemberRequest{GroupId: group.Id, Actor: "admin", Target: "admin"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "expected creator removal to be forbidden")

	rec = app.doRequest(t, http.MethodPost, "/api/groups/admins", GroupMemberRequest{GroupId: group.Id, Actor: "admin", Target: "u1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.doRequest(t, http.MethodDelete, "/api/groups/admins", GroupMemberRequest{GroupId: group.Id, Actor: "admin", Target: "u1"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.doRequest(t, http.MethodPost, "/api/groups/messages", GroupMessageRequest{GroupId: group.Id, Sender: "admin", Content: "Welcome"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.doRequest(t, http.MethodPost, "/api/groups/messages", GroupMessageRequest{GroupId: group.Id, Sender: "u2", Content: "hello"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.doRequest(t, http.MethodGet, fmt.Sprintf("/api/groups/messages?group_id=%d", group.Id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []types.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "Welcome", msgs[0].Content)

	rec = app.doRequest(t, http.MethodGet, fmt.Sprintf("/api/groups/participants?group_id=%d", group.Id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var members []types.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&members))
	require.Len(t, members, 2)
	assert.Equal(t, "admin", members[0].Username, "expected join order to be preserved")

	rec = app.doRequest(t, http.MethodGet, fmt.Sprintf("/api/groups/admins?group_id=%d", group.Id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&members))
	require.Len(t, members, 1, "expected only the creator after the demotion")

	rec = app.doRequest(t, http.MethodGet, fmt.Sprintf("/api/groups?id=%d", group.Id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&group))
	assert.Len(t, group.ParticipantIds, 2)

	rec = app.doRequest(t, http.MethodGet, "/api/groups?id=999999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListConversationsHandler(t *testing.T) {
	app, reg := newTestApp(t)
	for _, name := range []string{"alice", "bob"} {
		_, err := reg.RegisterUser(name)
		require.NoError(t, err)
	}
	_, err := reg.EnsureDirectRoom("alice", "bob")
	require.NoError(t, err)
	_, err = reg.CreateGroup("alice", "dev", "")
	require.NoError(t, err)

	rec := app.doRequest(t, http.MethodGet, "/api/conversations?user=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var conversations []types.Conversation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&conversations))
	require.Len(t, conversations, 2)

	kinds := []types.ConversationKind{conversations[0].Kind, conversations[1].Kind}
	assert.Contains(t, kinds, types.ConversationDirect)
	assert.Contains(t, kinds, types.ConversationGroup)

	rec = app.doRequest(t, http.MethodGet, "/api/conversations?user=nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
