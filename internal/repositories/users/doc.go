// Package users persists registered accounts as a JSON array under the
// auth_users_v1 key of the key-value store.
//
// Reads never fail: missing or corrupt data is treated as an empty
// collection. Write failures are logged and swallowed so a storage problem
// never interrupts the auth operation that triggered it.
package users
