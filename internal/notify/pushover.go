// Package notify sends Pushover notifications about finished batch
// runs. Delivery goes through retry with a circuit breaker so a flaky
// Pushover endpoint cannot stall or flood the solver.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"machine-solver/internal/retry"
)

const defaultEndpoint = "https://api.pushover.net/1/messages.json"

// Priority levels for Pushover
const (
	PriorityLowest    = -2
	PriorityLow       = -1
	PriorityNormal    = 0
	PriorityHigh      = 1
	PriorityEmergency = 2
)

// Notifier sends push notifications
type Notifier struct {
	appToken string
	userKey  string
	endpoint string
	enabled  bool
	client   *http.Client
	breaker  *retry.CircuitBreaker
}

// New creates a new Pushover notifier
// If appToken or userKey is empty, notifications are disabled
func New(appToken, userKey string) *Notifier {
	return &Notifier{
		appToken: appToken,
		userKey:  userKey,
		endpoint: defaultEndpoint,
		enabled:  appToken != "" && userKey != "",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: retry.NewCircuitBreaker(5, 5*time.Minute),
	}
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Send sends a notification with normal priority
func (n *Notifier) Send(title, message string) error {
	return n.SendWithPriority(title, message, PriorityNormal)
}

// SendWithPriority sends a notification with specified priority
func (n *Notifier) SendWithPriority(title, message string, priority int) error {
	if !n.enabled {
		return nil
	}
	if !n.breaker.Allow() {
		return retry.ErrCircuitOpen
	}

	data := url.Values{}
	data.Set("token", n.appToken)
	data.Set("user", n.userKey)
	data.Set("title", title)
	data.Set("message", message)
	data.Set("priority", fmt.Sprintf("%d", priority))

	// Emergency priority requires retry and expire parameters
	if priority == PriorityEmergency {
		data.Set("retry", "60")
		data.Set("expire", "3600")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		return n.post(data)
	})
	if err != nil {
		n.breaker.RecordFailure()
		return err
	}
	n.breaker.RecordSuccess()
	return nil
}

func (n *Notifier) post(data url.Values) error {
	resp, err := n.client.PostForm(n.endpoint, data)
	if err != nil {
		return fmt.Errorf("pushover request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover returned status %d", resp.StatusCode)
	}
	return nil
}

// NotifyBatchSolved reports a fully solved batch.
func (n *Notifier) NotifyBatchSolved(machineCount int, totalPresses int64, elapsed time.Duration) error {
	title := "Batch solved"
	message := fmt.Sprintf("Machines: %d\nTotal presses: %d\nElapsed: %s",
		machineCount, totalPresses, elapsed.Round(time.Millisecond))
	return n.Send(title, message)
}

// NotifyInfeasible reports machines with no valid press sequence. These
// usually mean a malformed input, so they go out at high priority.
func (n *Notifier) NotifyInfeasible(machineCount, infeasibleCount int) error {
	title := "Infeasible machines in batch"
	message := fmt.Sprintf("%d of %d machines have no solution",
		infeasibleCount, machineCount)
	return n.SendWithPriority(title, message, PriorityHigh)
}
