// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth holds the administrator credential helpers and card UID
canonicalization.

Admin passwords are bcrypt-hashed at setup time and verified at login:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, submitted)

Card UIDs use one canonical rendering everywhere (upper-case hex pairs
joined by colons, e.g. "04:A1:B2"): FormatUID for raw reader bytes,
NormalizeUID for human-typed input.
*/
package auth
