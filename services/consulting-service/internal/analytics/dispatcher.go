package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/md-rashed-zaman/consultdesk/libs/notify"
)

const summaryTitles = 3

// DispatchState remembers the last anomaly signature a dispatcher acted on.
// Each dashboard channel or tenant owns its own state.
type DispatchState struct {
	mu   sync.Mutex
	last string
}

func NewDispatchState() *DispatchState {
	return &DispatchState{}
}

// Swap stores sig and reports whether it differs from the previous value.
func (s *DispatchState) Swap(sig string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sig == s.last {
		return false
	}
	s.last = sig
	return true
}

func (s *DispatchState) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *DispatchState) Reset() {
	s.mu.Lock()
	s.last = ""
	s.mu.Unlock()
}

// Signature is order sensitive: the same anomalies in another order differ.
func Signature(anomalies []Anomaly) string {
	parts := make([]string, 0, len(anomalies))
	for _, a := range anomalies {
		parts = append(parts, string(a.Severity)+":"+a.Title)
	}
	return strings.Join(parts, "|")
}

// Dispatcher publishes a summary notification whenever the anomaly set changes.
type Dispatcher struct {
	state     *DispatchState
	publisher notify.Publisher
	logger    *slog.Logger
	recorder  Recorder
	timeout   time.Duration
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewDispatcher(state *DispatchState, publisher notify.Publisher, logger *slog.Logger, timeout time.Duration) *Dispatcher {
	if state == nil {
		state = NewDispatchState()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		state:     state,
		publisher: publisher,
		logger:    logger,
		recorder:  noopRecorder{},
		timeout:   timeout,
		now:       time.Now,
	}
}

// Dispatch compares the set against the stored signature and, on change,
// publishes in the background. An empty set updates the signature without
// publishing. It reports whether a publish was started.
func (d *Dispatcher) Dispatch(ctx context.Context, anomalies []Anomaly) bool {
	sig := Signature(anomalies)
	if !d.state.Swap(sig) || len(anomalies) == 0 {
		return false
	}

	n := d.summary(sig, anomalies)
	pubCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(pubCtx, d.timeout)
		defer cancel()
		if err := d.publisher.Publish(ctx, n); err != nil {
			d.recorder.NotificationPublished(false)
			d.logger.Warn("anomaly notification publish failed", "err", err, "signature", sig)
			return
		}
		d.recorder.NotificationPublished(true)
		d.logger.Info("anomaly notification published", "signature", sig, "anomalies", len(anomalies))
	}()
	return true
}

// Wait blocks until in-flight publishes finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) summary(sig string, anomalies []Anomaly) notify.Notification {
	top := anomalies
	if len(top) > summaryTitles {
		top = top[:summaryTitles]
	}
	titles := make([]string, 0, len(top))
	for _, a := range top {
		titles = append(titles, a.Title)
	}
	return notify.Notification{
		Title:     fmt.Sprintf("%d executive anomalies detected", len(anomalies)),
		Body:      strings.Join(titles, "\n"),
		Severity:  string(highest(anomalies)),
		Signature: sig,
		Metadata:  map[string]string{"count": fmt.Sprint(len(anomalies))},
		CreatedAt: d.now().UTC(),
	}
}

func highest(anomalies []Anomaly) Severity {
	best := SeverityLow
	for _, a := range anomalies {
		switch {
		case a.Severity == SeverityHigh:
			return SeverityHigh
		case a.Severity == SeverityMedium:
			best = SeverityMedium
		}
	}
	return best
}

func (d *Dispatcher) SetRecorder(r Recorder) {
	if r != nil {
		d.recorder = r
	}
}
