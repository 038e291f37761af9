// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package sheets replicates session tallies to a Google spreadsheet.

The sync is best-effort and idempotent: both trigger paths fully
overwrite a Summary region (option, label, count, percentage) and a
Detail region (timestamp, option — never card UIDs), so retries and
missed runs cannot drift. The local store remains the source of truth.

TriggerAsync is fire-and-forget and debounced (default 30s between
attempts) to stay under the Sheets API write quota during burst voting.
TriggerBlocking serves the admin export button: it clears the debounce
window, runs synchronously, and returns a structured Result. Missing
configuration, missing credentials, and network failures are reported
in the Result (manual path) or logged (automatic path) and never reach
the voting flow.

The debounce timestamp is in-process state guarded by a mutex; a
multi-process deployment would need to move it into the shared store.
*/
package sheets
