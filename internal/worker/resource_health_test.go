package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/taskform/internal/event"
	"github.com/matthewbaird/taskform/internal/eventbus"
)

func TestResourceHealthWorker_HandleEvent(t *testing.T) {
	ctx := context.Background()
	w := NewResourceHealthWorker()

	require.NoError(t, w.HandleEvent(ctx, event.NewOptionsFetchFailed(event.OptionsFetchFailedPayload{
		SessionID: "s1", ProgramType: "JAVA", Error: "timeout",
	})))
	require.NoError(t, w.HandleEvent(ctx, event.NewOptionsFetchFailed(event.OptionsFetchFailedPayload{
		SessionID: "s2", ProgramType: "JAVA", Error: "refused",
	})))

	snap := w.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 2, snap[0].ConsecutiveFailures)
	assert.Equal(t, "refused", snap[0].LastError)
	assert.Nil(t, snap[0].LastSuccessAt)

	require.NoError(t, w.HandleEvent(ctx, event.NewOptionsLoaded(event.OptionsLoadedPayload{
		SessionID: "s1", ProgramType: "JAVA", Roots: 2,
	})))
	require.NoError(t, w.HandleEvent(ctx, event.NewOptionsLoaded(event.OptionsLoadedPayload{
		SessionID: "s1", ProgramType: "JAVA", Roots: 2, Cached: true,
	})))
	require.NoError(t, w.HandleEvent(ctx, event.NewOptionsLoaded(event.OptionsLoadedPayload{
		SessionID: "s1", ProgramType: "PYTHON", Roots: 1,
	})))

	snap = w.Snapshot()
	require.Len(t, snap, 2)
	java := snap[0]
	assert.Equal(t, "JAVA", java.ProgramType)
	assert.Equal(t, 1, java.Fetches)
	assert.Equal(t, 1, java.CacheHits)
	assert.Equal(t, 2, java.Failures)
	assert.Zero(t, java.ConsecutiveFailures)
	assert.Equal(t, 2, java.LastRoots)
	assert.NotNil(t, java.LastSuccessAt)
	assert.Equal(t, "PYTHON", snap[1].ProgramType)
}

func TestResourceHealthWorker_IgnoresOtherEvents(t *testing.T) {
	w := NewResourceHealthWorker()
	require.NoError(t, w.HandleEvent(context.Background(), event.NewFieldChanged(event.FieldChangedPayload{
		SessionID: "s", Field: "appName", Value: "x", Version: 1,
	})))
	assert.Empty(t, w.Snapshot())
}

func TestResourceHealthWorker_BadPayload(t *testing.T) {
	w := NewResourceHealthWorker()
	err := w.HandleEvent(context.Background(), event.DomainEvent{
		EventType: event.TypeOptionsLoaded,
		Payload:   []byte("{"),
	})
	assert.Error(t, err)
}

func TestResourceHealthWorker_OnBus(t *testing.T) {
	w := NewResourceHealthWorker()
	bus := eventbus.New(8)
	bus.Subscribe("resource_health", w)
	bus.Start(context.Background())

	bus.Publish(context.Background(), event.NewOptionsFetchFailed(event.OptionsFetchFailedPayload{
		SessionID: "s", ProgramType: "SCALA", Error: "down",
	}))
	bus.Stop()

	require.Eventually(t, func() bool { return len(w.Snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, w.Snapshot()[0].Failures)
}
