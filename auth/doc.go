// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential and token primitives.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password, 0) // 0 = bcrypt.DefaultCost
	err := auth.CheckPassword(hash, password)   // ErrInvalidPassword on mismatch

# Session Tokens

Session tokens are HS256 JWTs. The subject is the user id and the JWT id is
the server-side session id used for revocation:

	claims := auth.NewSessionClaims(sessionID, userID, email, guest, time.Now(), ttl)
	token, err := auth.SignSessionToken(claims, secret)
	claims, err := auth.ParseSessionToken(token, secret, time.Now)

ParseSessionToken returns ErrExpiredToken for expired tokens and
ErrInvalidToken for everything else.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
