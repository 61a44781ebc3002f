package session

import (
	"net/url"
	"sync"
)

// URLNavigator keeps a session's location history in memory.
type URLNavigator struct {
	mu      sync.Mutex
	history []url.URL
}

func NewURLNavigator() *URLNavigator {
	return &URLNavigator{history: []url.URL{{Path: "/"}}}
}

func (n *URLNavigator) Current() *url.URL {
	n.mu.Lock()
	defer n.mu.Unlock()

	u := n.history[len(n.history)-1]
	return &u
}

func (n *URLNavigator) Replace(u *url.URL) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.history[len(n.history)-1] = *u
}

func (n *URLNavigator) Push(u *url.URL) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.history = append(n.history, *u)
}

// visited returns every location in the history, oldest first.
func (n *URLNavigator) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]string, len(n.history))
	for i := range n.history {
		out[i] = n.history[i].String()
	}
	return out
}
