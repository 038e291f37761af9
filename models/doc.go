// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain types and HTTP request/response types
shared across the Tap Vote server.

# Domain Types

  - Session: one time-boxed question with 2-4 labeled options (A-D)
  - Card: a physical NFC credential identified by its UID
  - Vote: an anonymized recorded choice (no card UID)
  - OptionCount: per-option tally row, zero-vote options included

# Sessions and Options

Options C and D are optional; Session.Options returns the populated
choices in display order and Session.HasOption validates a submitted
option key:

	if !session.HasOption(req.Option) { ... }

# Privacy

Vote and ExportVote never carry card UIDs. The (session, card) pairing
lives only in the vote_tracker table, which is never exported.
*/
package models
