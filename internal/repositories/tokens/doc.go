// Package tokens stores the active session token of every user under the
// auth_tokens_v1 key as a JSON object mapping user id to token.
//
// One token per user: issuing a new one overwrites the previous mapping.
// Lookups go through an in-memory index in both directions. It is built
// from the document on first use and rebuilt on every Load, Save, Put and
// DeleteByUserID, so a lookup neither reads the store nor scans the map.
// Writes made by another process are picked up by the next Load.
package tokens
