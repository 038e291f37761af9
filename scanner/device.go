// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scanner

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// DeviceReader reads UIDs from a character device or FIFO where the
// reader bridge writes one hex UID per line (with or without colon
// separators). This is the boundary to the PN532 hardware: the chip
// driver itself lives outside this repository.
type DeviceReader struct {
	file *os.File
	scan *bufio.Scanner
}

// OpenDevice opens the reader device path.
func OpenDevice(path string) (Reader, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open reader device: %w", err)
	}
	return &DeviceReader{file: f, scan: bufio.NewScanner(f)}, nil
}

// Connector returns a connect function for NewSource, or nil when no
// device path is configured (hardware-absent degradation).
func Connector(path string) func() (Reader, error) {
	if path == "" {
		return nil
	}
	return func() (Reader, error) {
		return OpenDevice(path)
	}
}

// ReadUID waits up to timeout for one UID line. Returns (nil, nil) on
// timeout and on lines that do not parse as hex, so garbage on the
// wire is a non-event rather than a transport failure.
func (d *DeviceReader) ReadUID(timeout time.Duration) ([]byte, error) {
	if err := d.file.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	if !d.scan.Scan() {
		err := d.scan.Err()
		if err == nil {
			// EOF: the writing side closed; treat as transport error
			// so the loop reopens the device.
			return nil, errors.New("reader device closed")
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			// A deadline error poisons the bufio.Scanner; swap in a
			// fresh one for the next poll.
			d.scan = bufio.NewScanner(d.file)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from device: %w", err)
	}

	return parseUIDLine(d.scan.Text()), nil
}

func (d *DeviceReader) Close() error {
	return d.file.Close()
}

// parseUIDLine decodes "04A1B2C3" or "04:A1:B2:C3" into bytes, nil
// when the line is not a UID.
func parseUIDLine(line string) []byte {
	cleaned := strings.ReplaceAll(strings.TrimSpace(line), ":", "")
	if cleaned == "" {
		return nil
	}
	raw, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil
	}
	return raw
}
