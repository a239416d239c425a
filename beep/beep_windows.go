//go:build windows

package beep

// Sound cues are not implemented on Windows.

func Init()      {}
func PlayStart() {}
func PlayEnd()   {}
func PlayError() {}
