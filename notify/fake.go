package notify

import "sync"

// Sent is one recorded notification.
type Sent struct {
	Title string
	Body  string
}

// Fake records notifications instead of posting them.
type Fake struct {
	mu   sync.Mutex
	sent []Sent
	Err  error
}

func NewFakeNotifier() *Fake {
	return &Fake{}
}

func (f *Fake) Send(title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.sent = append(f.sent, Sent{Title: title, Body: body})
	return nil
}

func (f *Fake) Sent() []Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Sent, len(f.sent))
	copy(out, f.sent)
	return out
}
