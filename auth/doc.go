// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Admin Keys

Admin keys are HMAC-SHA256 over the poll ID with a server-side salt, so
they can be validated without being stored:

	key := auth.GenerateAdminKey(pollID, cfg.AdminKeySalt)
	err := auth.ValidateAdminKey(pollID, key, cfg.AdminKeySalt)

Validation is constant-time.

# Voter Tokens

GenerateVoterToken returns 192 random bits, base64url without padding.
A voter claims a username, receives a token, and presents it to submit or
update their approval ballot.

# Share Slugs

GenerateShareSlug derives a short alphanumeric slug from the poll ID and a
separate salt. Deterministic: republishing the same poll yields the same
slug.

# Random IDs

GenerateID returns cryptographically random hex of the requested byte
length. Used for poll and option IDs.
*/
package auth
