// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db owns the schema and all query helpers for the voting store.

# Drivers

Open selects the driver from the configured database type:

  - sqlite (default): modernc.org/sqlite with WAL, busy_timeout and
    foreign_keys pragmas applied through the DSN
  - postgres: lib/pq

Queries are written once in the dialect both drivers share: $N
placeholders, ON CONFLICT clauses, and timestamps bound from Go rather
than SQL datetime functions.

# The one-vote invariant

vote_tracker's (session_id, card_uid) primary key is the sole
enforcement point for one vote per card per session. RecordVote inserts
into it with ON CONFLICT DO NOTHING inside the same transaction that
appends the anonymized vote row; a zero-row insert means duplicate and
nothing else is written. Every other "has voted" read (HasVoted) is
advisory.

# Privacy

votes rows carry no card UID. The (session, card) pairing exists only
in vote_tracker, which is never exported or counted.
*/
package db
