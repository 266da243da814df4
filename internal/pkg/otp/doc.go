// Package otp provides helpers for generating one-time passwords (OTP).
//
// This is typically used for contact verification flows: generate a random
// numeric code, deliver it out of band, then compare the user-provided code
// against a stored hash.
package otp
