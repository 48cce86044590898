// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity is the identity provider: accounts, guests and bearer
session tokens.

# Accounts

SignUp lower-cases and trims the email, requires an "@" and a password of at
least six characters, and stores a bcrypt hash. User ids are UUIDs. SignIn
returns the same models.ErrAuth message for an unknown email and a wrong
password.

Guests get a "guest-<uuid>" id and no account row.

# Tokens

	token, err := provider.Issue(ctx, identity)
	identity, err := provider.Verify(ctx, token)

Tokens are HS256 JWTs whose jti names an auth_session row. Verify rejects
tokens whose row is missing or revoked. SignOut revokes every row of the
user, so all devices are signed out together.

# Auth State

OnAuthStateChange listeners run after every sign-in, sign-up, guest start
and sign-out. tracker.Manager uses the sign-out event to tear the in-memory
session down.
*/
package identity
