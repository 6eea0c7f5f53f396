package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"targetbrowse/db"
)

type Event struct {
	Level     string    `json:"level"`
	Text      string    `json:"text"`
	Resource  string    `json:"resource,omitempty"`
	ResetsAt  string    `json:"resets_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// QueueNotifier pushes user-facing notifications onto a redis list consumed
// by the frontend. Delivery is fire-and-forget: a failure here is logged
// and never fails the pipeline.
type QueueNotifier struct {
	queueKey string
	push     func(queueKey, data string) error
}

func NewQueueNotifier(queueKey string) *QueueNotifier {
	return &QueueNotifier{queueKey: queueKey, push: db.PushToQueue}
}

func (n *QueueNotifier) NotifyInfo(text string)    { n.publish(Event{Level: "info", Text: text}) }
func (n *QueueNotifier) NotifySuccess(text string) { n.publish(Event{Level: "success", Text: text}) }
func (n *QueueNotifier) NotifyWarning(text string) { n.publish(Event{Level: "warning", Text: text}) }

func (n *QueueNotifier) NotifyQuotaLimit(resource string, resetsAt time.Time) {
	n.publish(Event{
		Level:    "warning",
		Text:     fmt.Sprintf("%s daily limit reached, resets at %s", resource, resetsAt.Format("15:04 MST")),
		Resource: resource,
		ResetsAt: resetsAt.Format(time.RFC3339),
	})
}

func (n *QueueNotifier) publish(evt Event) {
	evt.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(evt)
	if err != nil {
		slog.Error("error marshaling notification", "error", err)
		return
	}
	if err := n.push(n.queueKey, string(data)); err != nil {
		slog.Error("error pushing notification to queue", "error", err)
	}
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) NotifyInfo(string)                  {}
func (Nop) NotifySuccess(string)               {}
func (Nop) NotifyWarning(string)               {}
func (Nop) NotifyQuotaLimit(string, time.Time) {}
