// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package token implements the signed, short-lived capability tokens that
carry a card scan forward to a ballot submission.

A token binds (card UID, session ID) and is valid for a fixed window
after issuance (default 300s). It is the only contract between the
asynchronous scan path and the synchronous submission path: no
server-side state is created at issuance and none needs cleaning up.

	codec := token.New(cfg.SecretKey, cfg.TokenMaxAge)
	t, _ := codec.Issue("04:A1:B2", sessionID)
	uid, sid, err := codec.Verify(t) // ErrInvalidToken after expiry

Verification failures are uniform: signature mismatch, malformed
payload, and expiry all return ErrInvalidToken.

The same codec also issues admin session tokens (subject "admin",
12h lifetime) used by the admin console after password login.
*/
package token
