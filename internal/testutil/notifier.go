package testutil

import (
	"strings"
	"sync"
)

// RecordingNotifier captures asynchronous deliveries per connection
type RecordingNotifier struct {
	mu       sync.Mutex
	messages map[string][]string
}

// NewRecordingNotifier creates an empty recorder
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{messages: make(map[string][]string)}
}

// Deliver records msg for connID
func (n *RecordingNotifier) Deliver(connID string, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages[connID] = append(n.messages[connID], msg)
}

// Messages returns a copy of everything delivered to connID
func (n *RecordingNotifier) Messages(connID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages[connID]...)
}

// Received reports whether any message to connID contains substr
func (n *RecordingNotifier) Received(connID, substr string) bool {
	for _, m := range n.Messages(connID) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// Reset forgets all recorded messages
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = make(map[string][]string)
}
