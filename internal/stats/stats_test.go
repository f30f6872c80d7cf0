package stats

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/jfendler/go-chatregistry/internal/registry"
	"github.com/stretchr/testify/assert"
)

func TestNewStatsUpdater(t *testing.T) {
	mux := http.NewServeMux()
	su := NewStatsUpdater(mux)
	assert.NotNil(t, su, "expected StatsUpdater to be non-nil")
	assert.NotNil(t, su.updateChan, "expected updateChan to be initialized")
	handler, pattern := mux.Handler(&http.Request{URL: &url.URL{Path: "/debug/vars"}, Method: http.MethodGet})
	assert.NotNil(t, handler, "expected handler for /debug/vars to be set")
	assert.Equal(t, "GET /debug/vars", pattern, "expected handler to be registered for GET method on /debug/vars")

	for _, name := range []string{
		MetricUsersRegistered,
		MetricRoomsCreated,
		MetricGroupsCreated,
		MetricMessagesSent,
		MetricEventsDelivered,
		MetricActiveWsClients,
	} {
		assert.NotNilf(t, su.vars.Get(name), "expected metric %q to be registered", name)
	}
}

func TestRegistryObserver(t *testing.T) {
	tcases := []struct {
		name    string
		op      registry.Op
		metrics []string
	}{
		{
			name:    "user registered",
			op:      registry.OpUserRegistered,
			metrics: []string{MetricEventsDelivered, MetricUsersRegistered},
		},
		{
			name:    "room created",
			op:      registry.OpRoomCreated,
			metrics: []string{MetricEventsDelivered, MetricRoomsCreated},
		},
		{
			name:    "group created",
			op:      registry.OpGroupCreated,
			metrics: []string{MetricEventsDelivered, MetricGroupsCreated},
		},
		{
			name:    "direct message",
			op:      registry.OpDirectMessageSent,
			metrics: []string{MetricEventsDelivered, MetricMessagesSent},
		},
		{
			name:    "group message",
			op:      registry.OpGroupMessageSent,
			metrics: []string{MetricEventsDelivered, MetricMessagesSent},
		},
		{
			name:    "uncounted op",
			op:      registry.OpContactAdded,
			metrics: []string{MetricEventsDelivered},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockStats := &MockStatsUpdater{}
			for _, m := range tc.metrics {
				mockStats.On("Incr", m).Once()
			}

			RegistryObserver(mockStats)(registry.Event{Op: tc.op})
			mockStats.AssertExpectations(t)
		})
	}
}
