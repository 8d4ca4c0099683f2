// Package otp derives the one-time codes and confirmation signatures used by
// the marketplace's mobile authenticator.
//
// Two secrets back every authenticator. The shared secret produces five
// character login codes (TOTP with a 30 second step and a custom 26 symbol
// alphabet). The identity secret signs confirmation requests with an
// HMAC-SHA1 over the request time and an operation tag.
//
// # Login Codes
//
//	secret, err := otp.DecodeSecret("AAAAAAAAAAAAAAAA")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	code, err := otp.GenerateCode(secret, uint32(time.Now().Unix()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(code) // e.g. "2W3J6"
//
// # Confirmation Signatures
//
//	sig, err := otp.GenerateConfirmationKey(identity, serverTime, otp.TagConfirmations)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tags longer than MaxTagLength bytes are truncated, so two tags sharing the
// same first 32 bytes produce the same signature.
//
// # Time
//
// Both functions reject a zero time with ErrInvalidTime. Callers are expected
// to obtain time from an authoritative source (see package clock) rather
// than the local wall clock.
//
// # Thread Safety
//
// All functions are pure and safe for concurrent use.
package otp
