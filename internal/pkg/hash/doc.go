// Package hash provides helpers for hashing and verifying short-lived
// secrets.
//
// Typical usage is for one-time codes: store only the hash, then verify user
// input by comparing the plaintext against the stored hash. Implementations
// live in this package behind a small interface.
package hash
