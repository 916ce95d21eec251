package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	monitor "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/domain"
)

type scriptedSource struct {
	mu      sync.Mutex
	cycles  []func() ([]map[string]any, error)
	current int
}

func (s *scriptedSource) FetchStatuses(_ context.Context) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.cycles) {
		return nil, nil
	}
	cycle := s.cycles[s.current]
	s.current++
	return cycle()
}

func itemsCycle(items ...map[string]any) func() ([]map[string]any, error) {
	return func() ([]map[string]any, error) { return items, nil }
}

func errCycle(err error) func() ([]map[string]any, error) {
	return func() ([]map[string]any, error) { return nil, err }
}

type recordingSink struct {
	mu          sync.Mutex
	transitions []string
}

func (r *recordingSink) ObserveTransition(_ context.Context, prev *monitor.EquipmentStatus, next monitor.EquipmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	from := "-"
	if prev != nil {
		from = string(prev.Status)
	}
	r.transitions = append(r.transitions, next.ID+":"+from+">"+string(next.Status))
	return nil
}

func (r *recordingSink) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.transitions...)
}

func TestPollerFailedCycleRetainsSnapshot(t *testing.T) {
	boom := errors.New("backend unreachable")
	source := &scriptedSource{cycles: []func() ([]map[string]any, error){
		itemsCycle(map[string]any{"equipment_id": float64(1), "current_status": "en_cours"}),
		itemsCycle(
			map[string]any{"equipment_id": float64(1), "current_status": "en_cours"},
			map[string]any{"equipment_id": float64(2), "current_status": "operationnel"},
		),
		errCycle(boom),
		itemsCycle(map[string]any{"equipment_id": float64(2), "current_status": "operationnel"}),
	}}
	manager := NewAlertManager(WithExpiry(time.Hour, 0))
	defer manager.Stop()
	poller, err := NewPoller(source, manager, nil)
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	ctx := context.Background()
	_ = poller.Refresh(ctx)
	_ = poller.Refresh(ctx)

	if err := poller.Refresh(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error surfaced, got %v", err)
	}
	snap := poller.Snapshot()
	if snap.Err == nil {
		t.Fatalf("expected error flag raised after failed cycle")
	}
	if len(snap.Statuses) != 2 {
		t.Fatalf("expected cycle-2 statuses retained, got %d", len(snap.Statuses))
	}

	if err := poller.Refresh(ctx); err != nil {
		t.Fatalf("4th cycle should succeed: %v", err)
	}
	snap = poller.Snapshot()
	if snap.Err != nil {
		t.Fatalf("expected error flag cleared on success, got %v", snap.Err)
	}
	if len(snap.Statuses) != 1 || snap.Statuses[0].ID != "2" {
		t.Fatalf("expected fresh snapshot, got %+v", snap.Statuses)
	}
}

func TestPollerAlertsOnTransitionsOnly(t *testing.T) {
	source := &scriptedSource{cycles: []func() ([]map[string]any, error){
		itemsCycle(map[string]any{"equipment_id": float64(1), "current_status": "en_cours"}),
		itemsCycle(map[string]any{"equipment_id": float64(1), "current_status": "en_cours"}),
		itemsCycle(map[string]any{"equipment_id": float64(1), "current_status": "en_attente"}),
		itemsCycle(map[string]any{"equipment_id": float64(1), "current_status": "operationnel"}),
		itemsCycle(map[string]any{"equipment_id": float64(1), "current_status": "en_cours"}),
	}}
	notifier := newCaptureNotifier()
	manager := NewAlertManager(WithExpiry(time.Hour, 0), WithNotifier(notifier))
	defer manager.Stop()
	poller, err := NewPoller(source, manager, nil)
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = poller.Refresh(ctx)
	}

	created := notifier.ofType(EventCreated)
	// Cycle 1 (new en_cours), cycle 3 (en_cours→en_attente) and cycle 5
	// (re-entry) alert; the stable cycle 2 and the operational cycle 4
	// do not.
	if len(created) != 3 {
		t.Fatalf("expected 3 created alerts, got %d", len(created))
	}
	ids := map[string]struct{}{}
	for _, event := range created {
		ids[event.Alert.ID] = struct{}{}
	}
	if len(ids) != 3 {
		t.Fatalf("expected distinct alert identities per re-detection")
	}
}

func TestPollerCapsBannerAlertsPerCycle(t *testing.T) {
	source := &scriptedSource{cycles: []func() ([]map[string]any, error){
		itemsCycle(
			map[string]any{"equipment_id": float64(1), "current_status": "en_cours"},
			map[string]any{"equipment_id": float64(2), "current_status": "en_cours"},
			map[string]any{"equipment_id": float64(3), "current_status": "en_attente"},
			map[string]any{"equipment_id": float64(4), "current_status": "en_cours"},
			map[string]any{"equipment_id": float64(5), "current_status": "en_attente"},
		),
	}}
	manager := NewAlertManager(WithExpiry(time.Hour, 0))
	defer manager.Stop()
	poller, err := NewPoller(source, manager, nil)
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	if err := poller.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	active := manager.Active()
	if len(active) != monitor.BannerCap {
		t.Fatalf("expected %d banner alerts from a 5-entry batch, got %d", monitor.BannerCap, len(active))
	}
	// The cap keeps the most recent qualifying entries.
	want := []string{"3", "4", "5"}
	for i, alert := range active {
		if alert.Equipment.ID != want[i] {
			t.Fatalf("alert %d equipment = %s, want %s", i, alert.Equipment.ID, want[i])
		}
	}
}

func TestPollerFeedsTransitionSinks(t *testing.T) {
	source := &scriptedSource{cycles: []func() ([]map[string]any, error){
		itemsCycle(map[string]any{"equipment_id": float64(1), "current_status": "en_attente"}),
		itemsCycle(map[string]any{"equipment_id": float64(1), "current_status": "terminee"}),
		itemsCycle(map[string]any{"equipment_id": float64(1), "current_status": "terminee"}),
	}}
	sink := &recordingSink{}
	manager := NewAlertManager(WithExpiry(time.Hour, 0))
	defer manager.Stop()
	poller, err := NewPoller(source, manager, nil, WithSinks(sink))
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_ = poller.Refresh(ctx)
	}

	got := sink.all()
	want := []string{"1:->EN_ATTENTE", "1:EN_ATTENTE>TERMINEE"}
	if len(got) != len(want) {
		t.Fatalf("expected %d transitions, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transition %d = %q, want %q", i, got[i], want[i])
		}
	}
}

type recordingPublisher struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recordingPublisher) PublishSnapshot(_ context.Context, snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
}

func (r *recordingPublisher) all() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snaps...)
}

func TestPollerPublishesSnapshotPerSuccessfulCycle(t *testing.T) {
	boom := errors.New("backend unreachable")
	source := &scriptedSource{cycles: []func() ([]map[string]any, error){
		itemsCycle(map[string]any{"equipment_id": float64(1), "current_status": "en_cours"}),
		errCycle(boom),
		itemsCycle(
			map[string]any{"equipment_id": float64(1), "current_status": "terminee"},
			map[string]any{"equipment_id": float64(2), "current_status": "operationnel"},
		),
	}}
	publisher := &recordingPublisher{}
	manager := NewAlertManager(WithExpiry(time.Hour, 0))
	defer manager.Stop()
	poller, err := NewPoller(source, manager, nil, WithSnapshotPublisher(publisher))
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	ctx := context.Background()
	_ = poller.Refresh(ctx)
	_ = poller.Refresh(ctx)
	_ = poller.Refresh(ctx)

	snaps := publisher.all()
	if len(snaps) != 2 {
		t.Fatalf("expected 2 published snapshots, got %d", len(snaps))
	}
	if len(snaps[0].Statuses) != 1 || snaps[0].Statuses[0].ID != "1" {
		t.Fatalf("unexpected first snapshot: %+v", snaps[0].Statuses)
	}
	if len(snaps[1].Statuses) != 2 {
		t.Fatalf("unexpected second snapshot: %+v", snaps[1].Statuses)
	}
}

func TestPollerStartFetchesImmediatelyThenOnSchedule(t *testing.T) {
	var fetches atomic.Int64
	source := SourceFunc(func(_ context.Context) ([]map[string]any, error) {
		fetches.Add(1)
		return nil, nil
	})
	manager := NewAlertManager(WithExpiry(time.Hour, 0))
	defer manager.Stop()
	poller, err := NewPoller(source, manager, nil, WithInterval(25*time.Millisecond))
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for fetches.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 fetches, got %d", fetches.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestPollerDropsResultAfterTeardown(t *testing.T) {
	source := SourceFunc(func(ctx context.Context) ([]map[string]any, error) {
		<-ctx.Done()
		return []map[string]any{{"equipment_id": float64(9), "current_status": "en_cours"}}, nil
	})
	manager := NewAlertManager(WithExpiry(time.Hour, 0))
	defer manager.Stop()
	poller, err := NewPoller(source, manager, nil)
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if err := poller.Refresh(ctx); err == nil {
		t.Fatalf("expected context error after teardown")
	}
	if snap := poller.Snapshot(); len(snap.Statuses) != 0 {
		t.Fatalf("late result must not mutate state, got %+v", snap.Statuses)
	}
	if len(manager.Active()) != 0 {
		t.Fatalf("late result must not raise alerts")
	}
}
