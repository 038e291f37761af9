// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package scanner runs the background NFC polling loop.

The hardware boundary is the Reader interface — read one UID within a
bounded timeout or report a transport error. Source polls a Reader
forever: same-UID taps within the cooldown window (default 2s) are
suppressed, transport errors trigger log-wait-reconnect (default 5s)
indefinitely, and shutdown is via context cancellation.

When no reader device is configured the source degrades to an inert
idle loop instead of failing, so the server remains fully operable and
testable without physical hardware.

DeviceReader is the shipped Reader: it consumes one hex UID per line
from a character device or FIFO fed by the reader bridge. The PN532
chip driver itself is outside this repository.
*/
package scanner
