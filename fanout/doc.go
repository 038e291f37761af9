// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package fanout pushes scan and vote events to connected observers.

Subscribers are partitioned into two audiences:

  - kiosk: the public display (scan_rejected, scan_authorized,
    vote_committed)
  - admin: the enrollment console (raw_scan, vote_committed)

Delivery is best-effort and at-most-once per subscriber. Publish never
blocks: a subscriber whose buffer is full loses that event. Each
subscriber that does keep up sees events in publish order. No backlog
is kept — display clients fetch authoritative tallies over HTTP on
connect and treat pushes as refresh hints.

WSHandler exposes an audience's stream as a websocket endpoint
(/ws/kiosk, /ws/admin) writing JSON-encoded Event frames.
*/
package fanout
