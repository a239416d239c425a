package update

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Apply downloads the release asset, verifies its checksum and swaps it
// in over the running executable with an atomic rename.
func Apply(rel *Release) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("find executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolve symlinks: %w", err)
	}

	// The temp file lives next to the executable so the final rename
	// stays on one filesystem.
	tmpPath, digest, err := download(rel.AssetURL, filepath.Dir(execPath))
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	if rel.ChecksumURL != "" {
		expected, err := fetchExpectedHash(rel.ChecksumURL, assetName())
		if err != nil {
			return fmt.Errorf("fetch checksums: %w", err)
		}
		if digest != expected {
			return fmt.Errorf("checksum mismatch: got %s, want %s", digest[:12], expected[:12])
		}
	}

	if err := os.Chmod(tmpPath, 0755); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	return swapBinary(execPath, tmpPath)
}

// download streams the asset into a temp file in dir, returning the temp
// path and the hex sha256 of the bytes written.
func download(url, dir string) (string, string, error) {
	tmpFile, err := os.CreateTemp(dir, ".dicto-update-*")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	cleanup := func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}

	resp, err := http.Get(url)
	if err != nil {
		cleanup()
		return "", "", fmt.Errorf("download binary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		cleanup()
		return "", "", fmt.Errorf("download binary: %s", resp.Status)
	}

	hasher := sha256.New()
	src := io.Reader(resp.Body)
	if resp.ContentLength > 0 {
		src = &progressReader{r: resp.Body, total: resp.ContentLength}
	}
	if _, err := io.Copy(io.MultiWriter(tmpFile, hasher), src); err != nil {
		cleanup()
		return "", "", fmt.Errorf("write binary: %w", err)
	}
	if resp.ContentLength > 0 {
		fmt.Println() // newline after progress
	}
	tmpFile.Close()
	return tmpPath, hex.EncodeToString(hasher.Sum(nil)), nil
}

// swapBinary replaces execPath with tmpPath, rolling back on failure.
func swapBinary(execPath, tmpPath string) error {
	oldPath := execPath + ".old"
	if err := os.Rename(execPath, oldPath); err != nil {
		return fmt.Errorf("back up current binary: %w", err)
	}
	if err := os.Rename(tmpPath, execPath); err != nil {
		_ = os.Rename(oldPath, execPath)
		return fmt.Errorf("install new binary: %w", err)
	}
	_ = os.Remove(oldPath)
	return nil
}

type progressReader struct {
	r     io.Reader
	total int64
	read  int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	pct := float64(p.read) / float64(p.total) * 100
	fmt.Fprintf(os.Stderr, "\r  %.0f%% (%d / %d KB)", pct, p.read/1024, p.total/1024)
	return n, err
}

func fetchExpectedHash(checksumURL, filename string) (string, error) {
	resp, err := http.Get(checksumURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("checksums: %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		// Lines look like "<hash>  <filename>".
		parts := strings.Fields(scanner.Text())
		if len(parts) == 2 && parts[1] == filename {
			return parts[0], nil
		}
	}
	return "", fmt.Errorf("no checksum for %s", filename)
}
