package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func TestHub_PublishSubscribe(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch, unsub := hub.Subscribe()
	defer unsub()

	hub.Publish(Event{Type: EventWidgetMounted, PageID: "p1", Data: map[string]any{"widget": "energy-mix-monitor"}})

	received := receive(t, ch)
	assert.Equal(t, EventWidgetMounted, received.Type)
	assert.Equal(t, "p1", received.PageID)
	assert.False(t, received.Timestamp.IsZero())
}

func TestHub_PageFiltering(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	p1, unsub1 := hub.SubscribePage("p1")
	defer unsub1()
	p2, unsub2 := hub.SubscribePage("p2")
	defer unsub2()

	hub.Publish(Event{Type: EventViewChanged, PageID: "p1"})
	hub.Publish(Event{Type: EventAssetsChanged})

	assert.Equal(t, EventViewChanged, receive(t, p1).Type)
	assert.Equal(t, EventAssetsChanged, receive(t, p1).Type)
	assert.Equal(t, EventAssetsChanged, receive(t, p2).Type, "page-less events reach everyone")
	select {
	case ev := <-p2:
		t.Fatalf("p2 received %s for another page", ev.Type)
	default:
	}
}

func TestHub_DropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	_, unsub := hub.Subscribe()
	defer unsub()

	for i := 0; i < DefaultSubscriberBuffer+5; i++ {
		hub.Publish(Event{Type: EventSignalPublished})
	}
	assert.Equal(t, uint64(5), hub.Dropped())
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch, unsub := hub.Subscribe()
	require.Equal(t, 1, hub.Subscribers())
	unsub()
	unsub()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Subscribers())
}

func TestHub_CloseStopsPublishing(t *testing.T) {
	hub := NewHub()
	ch, _ := hub.Subscribe()
	hub.Close()
	hub.Close()

	_, ok := <-ch
	assert.False(t, ok)
	assert.NotPanics(t, func() { hub.Publish(Event{Type: EventPageCreated}) })

	late, _ := hub.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribing after close returns a closed channel")
}

func TestMetricsCountAndServe(t *testing.T) {
	m := NewMetrics()
	m.Signal("dashboard:refresh")
	m.Signal("dashboard:refresh")
	m.WidgetMounted("project-manifesto")
	m.LayoutApplied()
	m.PagesActive.Set(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SignalsPublished.WithLabelValues("dashboard:refresh")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WidgetsMounted.WithLabelValues("project-manifesto")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LayoutApplies))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `earthcontrol_bus_signals_published_total{signal="dashboard:refresh"} 2`)
	assert.Contains(t, body, "earthcontrol_page_active 3")
	assert.True(t, strings.Contains(body, "go_goroutines"), "go collector should be registered")
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Signal("x")
		m.WidgetMounted("x")
		m.LayoutApplied()
		m.ObserveRender("page", time.Now())
	})
}

func TestTracerProviderWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewTracerProvider("earthcontrol-test", "test", &buf)
	require.NoError(t, err)

	ctx, span := StartSpan(context.Background(), "dashboard.refresh")
	span.SetAttributes(AttrPageID.String("p1"))
	RecordError(ctx, assert.AnError)
	span.End()

	require.NoError(t, tp.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "dashboard.refresh")
	assert.Contains(t, buf.String(), "earthcontrol.page.id")
}
