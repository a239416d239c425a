package hotkey

import (
	"testing"
	"time"
)

func waitToggle(t *testing.T, tg *Toggle) {
	t.Helper()
	select {
	case <-tg.Events():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for toggle")
	}
}

func TestTogglePressEmitsOneEvent(t *testing.T) {
	fk := NewFake()
	tg := NewToggle(fk)
	defer tg.Close()

	fk.SimKeydown()
	waitToggle(t, tg)

	fk.SimKeyup()
	select {
	case <-tg.Events():
		t.Fatal("release emitted a toggle event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestToggleMultipleCycles(t *testing.T) {
	fk := NewFake()
	tg := NewToggle(fk)
	defer tg.Close()

	for i := 0; i < 3; i++ {
		fk.SimKeydown()
		waitToggle(t, tg)
		fk.SimKeyup()
		time.Sleep(10 * time.Millisecond)
	}
}
