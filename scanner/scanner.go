// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scanner

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielhkuo/tapvote/auth"
)

// Reader is the hardware boundary: read one card UID or time out.
// A (nil, nil) return means no card was presented within the timeout.
// Any error is a transport failure and the caller will reconnect.
type Reader interface {
	ReadUID(timeout time.Duration) ([]byte, error)
	Close() error
}

// ScanFunc receives each debounced UID, formatted as "04:A1:B2".
type ScanFunc func(uid string)

// readTimeout bounds a single poll so the loop stays responsive to
// shutdown.
const readTimeout = 500 * time.Millisecond

// Source is the long-lived polling loop feeding card taps into the
// gate. It runs independently of request handling and shares nothing
// with it except the store and the fanout hub.
type Source struct {
	connect  func() (Reader, error)
	handle   ScanFunc
	cooldown time.Duration
	retry    time.Duration

	lastUID  string
	lastScan time.Time
}

// NewSource builds a scan loop. connect is called to (re)open the
// reader and may be nil when no hardware is configured: the loop then
// idles until shutdown instead of crashing, so the rest of the system
// runs on machines without a reader.
func NewSource(connect func() (Reader, error), handle ScanFunc, cooldown, retry time.Duration) *Source {
	return &Source{
		connect:  connect,
		handle:   handle,
		cooldown: cooldown,
		retry:    retry,
	}
}

// Run polls until ctx is canceled. Transport errors never terminate
// the loop: it logs, waits the retry delay, and reconnects forever.
func (s *Source) Run(ctx context.Context) {
	if s.connect == nil {
		slog.Info("no NFC reader configured; scan source idle")
		<-ctx.Done()
		return
	}

	for ctx.Err() == nil {
		reader, err := s.connect()
		if err != nil {
			slog.Error("NFC reader unavailable, retrying", "error", err, "retry", s.retry)
			sleep(ctx, s.retry)
			continue
		}

		slog.Info("NFC reader connected")
		err = s.readLoop(ctx, reader)
		_ = reader.Close()
		if ctx.Err() != nil {
			return
		}
		slog.Error("NFC reader error, reconnecting", "error", err, "retry", s.retry)
		sleep(ctx, s.retry)
	}
}

// readLoop polls one connected reader until a transport error or
// shutdown.
func (s *Source) readLoop(ctx context.Context, reader Reader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := reader.ReadUID(readTimeout)
		if err != nil {
			return err
		}
		if len(raw) == 0 {
			continue
		}

		uid := auth.FormatUID(raw)
		now := time.Now()

		// Suppress double-fire from a single physical tap
		if uid == s.lastUID && now.Sub(s.lastScan) < s.cooldown {
			continue
		}
		s.lastUID = uid
		s.lastScan = now

		slog.Info("card scanned", "uid", uid)
		s.handle(uid)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
