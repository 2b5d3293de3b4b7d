package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"example.com/event-planner/gateway/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestHubPublishSubscribe проверяет доставку событий подписчику.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	hub.Publish(userID, Event{Type: "test"})

	select {
	case event := <-ch:
		assert.Equal(t, "test", event.Type)
		assert.False(t, event.Timestamp.IsZero())
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubIsolatesUsers проверяет, что события не уходят чужим подписчикам.
func TestHubIsolatesUsers(t *testing.T) {
	hub := NewHub()
	owner, other := uuid.New(), uuid.New()

	ch, unsubscribe := hub.Subscribe(other)
	defer unsubscribe()

	hub.Publish(owner, Event{Type: EventBudgetUpdated})

	select {
	case event := <-ch:
		t.Fatalf("unexpected event %s", event.Type)
	default:
	}
}

// TestHubUnsubscribe проверяет закрытие канала и повторную отписку.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	require.Equal(t, 1, hub.Subscribers(userID))

	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Subscribers(userID))
}

// TestHubDropsWhenFull проверяет, что медленный подписчик не блокирует публикацию.
func TestHubDropsWhenFull(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	_, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Publish(userID, Event{Type: "tick"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

// TestBudgetUpdatedPayload проверяет статус бюджета в событии.
func TestBudgetUpdatedPayload(t *testing.T) {
	session := models.NewPlannerSession(uuid.New(), "E1", 500000)
	session.Budget = models.BudgetSnapshot{BudgetSetCents: 500000, SelectedTotalCents: 600000, RemainingCents: -100000}

	event := BudgetUpdated(session)
	payload, ok := event.Data.(BudgetPayload)
	require.True(t, ok)

	assert.Equal(t, EventBudgetUpdated, event.Type)
	assert.Equal(t, models.BudgetStatusOverBudget, payload.BudgetStatus)
	assert.Equal(t, int64(-100000), payload.RemainingCents)
}
