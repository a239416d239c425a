package paste

// FakeFocus returns a fixed cursor prefix.
type FakeFocus struct {
	Prefix  string
	Focused bool
}

func (f *FakeFocus) TextBeforeCursor() (string, bool) {
	return f.Prefix, f.Focused
}

// FakeClipboard records copied text.
type FakeClipboard struct {
	Copied []string
	Err    error
}

func (f *FakeClipboard) Copy(text string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Copied = append(f.Copied, text)
	return nil
}

// FakeKeystroke counts paste chords.
type FakeKeystroke struct {
	Pastes int
	Err    error
}

func (f *FakeKeystroke) Paste() error {
	if f.Err != nil {
		return f.Err
	}
	f.Pastes++
	return nil
}
