// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session tokens, join codes and random ids.

# Member Tokens

Member tokens are HS256 JWTs whose subject is the member id:

	token, expiresAt, err := auth.IssueMemberToken(memberID, secret, ttl)
	memberID, err := auth.ParseMemberToken(token, secret)

Parsing requires the HS256 method, the party-pick issuer and an expiry.
Who a member is gets decided elsewhere; the token only carries the id.

# Join Codes

Join codes are 6 characters drawn from an alphabet without I, O, 0 or 1:

	code, err := auth.GenerateJoinCode()

Codes are stored uppercased. Use NormalizeJoinCode on input so lookups are
case-insensitive.

# ID Generation

Random hex IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
