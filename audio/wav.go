package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// wavWriter streams s16le PCM into a RIFF/WAVE file. The header is written
// up front with zero sizes and patched on finalize.
type wavWriter struct {
	f          *os.File
	sampleRate uint32
	channels   uint16
	dataBytes  uint32
}

func newWAVWriter(path string, sampleRate uint32, channels uint16) (*wavWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("creating artifact file: %w", err)
	}

	w := &wavWriter{f: f, sampleRate: sampleRate, channels: channels}
	if err := w.writeHeader(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	// writeHeader uses WriteAt and leaves the offset at 0; PCM writes
	// must start after the header.
	if _, err := f.Seek(WAVHeaderSize, io.SeekStart); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("seeking past wav header: %w", err)
	}
	return w, nil
}

func (w *wavWriter) writeHeader() error {
	var h [WAVHeaderSize]byte
	byteRate := w.sampleRate * uint32(w.channels) * 2
	blockAlign := w.channels * 2

	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], WAVHeaderSize-8+w.dataBytes)
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(h[22:24], w.channels)
	binary.LittleEndian.PutUint32(h[24:28], w.sampleRate)
	binary.LittleEndian.PutUint32(h[28:32], byteRate)
	binary.LittleEndian.PutUint16(h[32:34], blockAlign)
	binary.LittleEndian.PutUint16(h[34:36], 16) // bits per sample
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], w.dataBytes)

	if _, err := w.f.WriteAt(h[:], 0); err != nil {
		return fmt.Errorf("writing wav header: %w", err)
	}
	return nil
}

func (w *wavWriter) Write(pcm []byte) error {
	n, err := w.f.Write(pcm)
	w.dataBytes += uint32(n)
	if err != nil {
		return fmt.Errorf("writing pcm: %w", err)
	}
	return nil
}

// Finalize patches the RIFF sizes and closes the file. Returns the number
// of PCM data bytes written.
func (w *wavWriter) Finalize() (uint32, error) {
	if err := w.writeHeader(); err != nil {
		w.f.Close()
		return w.dataBytes, err
	}
	if err := w.f.Close(); err != nil {
		return w.dataBytes, fmt.Errorf("closing artifact file: %w", err)
	}
	return w.dataBytes, nil
}
