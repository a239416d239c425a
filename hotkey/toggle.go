package hotkey

// Toggle collapses press/release pairs into single toggle events. One
// event fires per press; releases are drained and ignored.
type Toggle struct {
	events chan struct{}
	stop   chan struct{}
}

func NewToggle(hk Hotkey) *Toggle {
	t := &Toggle{
		events: make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	go t.run(hk)
	return t
}

// Events fires once per hotkey press.
func (t *Toggle) Events() <-chan struct{} {
	return t.events
}

func (t *Toggle) Close() {
	close(t.stop)
}

func (t *Toggle) run(hk Hotkey) {
	for {
		select {
		case <-t.stop:
			return
		case <-hk.Keydown():
			select {
			case t.events <- struct{}{}:
			default:
			}
		case <-hk.Keyup():
			// Drained so backend send channels never block.
		}
	}
}
