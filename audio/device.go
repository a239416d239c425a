package audio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// SelectDevice prompts for a capture device on the terminal. A single
// available device is returned without prompting.
func SelectDevice(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	switch len(devices) {
	case 0:
		return nil, fmt.Errorf("no capture devices found")
	case 1:
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	p := picker{devices: devices}
	p.render(true)

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		switch {
		case n == 1 && buf[0] == '\r': // Enter
			fmt.Print("\r\n")
			term.Restore(fd, oldState)
			return &devices[p.cursor], nil
		case n == 1 && buf[0] == 3: // Ctrl+C
			fmt.Print("\r\n")
			term.Restore(fd, oldState)
			os.Exit(130)
		case n == 1 && buf[0] == 'q':
			fmt.Print("\r\n")
			term.Restore(fd, oldState)
			return nil, fmt.Errorf("selection cancelled")
		case n == 1 && buf[0] == 'j':
			p.move(1)
		case n == 1 && buf[0] == 'k':
			p.move(-1)
		case n == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'A':
			p.move(-1)
		case n == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'B':
			p.move(1)
		}

		p.render(false)
	}
}

type picker struct {
	devices []DeviceInfo
	cursor  int
}

func (p *picker) move(delta int) {
	next := p.cursor + delta
	if next >= 0 && next < len(p.devices) {
		p.cursor = next
	}
}

func (p *picker) render(first bool) {
	if !first {
		// Move back up over the previous render.
		fmt.Printf("\x1b[%dA", len(p.devices)+2)
	}
	fmt.Print("\r\x1b[J")
	fmt.Print("Select microphone (↑/↓ or j/k, Enter to confirm, q to cancel):\r\n\r\n")
	for i, d := range p.devices {
		if i == p.cursor {
			fmt.Printf("  \x1b[1;36m▶ %s\x1b[0m\r\n", d.Name)
		} else {
			fmt.Printf("    %s\r\n", d.Name)
		}
	}
}
