// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package gate is the scan-time state machine between the NFC reader and
the voting flow.

Every scan produces a raw_scan event for the admin enrollment view,
then passes through three ordered gates:

 1. voting open (active session exists)
 2. card registered and active
 3. card has not already voted

The first failing gate wins and its reason reaches the kiosk display.
A scan that passes all gates is answered with a signed capability token
embedded in a /vote/{token} redemption path. The gate itself never
writes a tracker entry — a scan alone never spends the card's one-vote
allowance.
*/
package gate
