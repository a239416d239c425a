//go:build !linux

package paste

// CompositorFocus assumes an editable element has focus. The text before
// the cursor is not available without an accessibility bridge.
type CompositorFocus struct{}

func NewFocus() *CompositorFocus {
	return &CompositorFocus{}
}

func (f *CompositorFocus) TextBeforeCursor() (string, bool) {
	return "", true
}
