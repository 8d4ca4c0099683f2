package otp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	// Period is the TOTP time step in seconds.
	Period = 30
	// CodeLength is the number of symbols in a login code.
	CodeLength = 5
	// MaxTagLength is the maximum number of tag bytes mixed into a
	// confirmation signature. Longer tags are truncated.
	MaxTagLength = 32
	// Alphabet holds the symbols a login code is drawn from. Ambiguous
	// glyphs (0, 1, A, E, I, L, O, S, U, Z) are excluded.
	Alphabet = "23456789BCDFGHJKMNPQRTVWXY"
)

// Confirmation tags understood by the remote service.
const (
	// TagConfirmations signs listing and, by convention, every other
	// confirmation operation.
	TagConfirmations = "conf"
	// TagDetails signs a single confirmation detail request.
	TagDetails = "details"
	// TagAllow signs an accept operation.
	TagAllow = "allow"
	// TagCancel signs a deny operation.
	TagCancel = "cancel"
)

// Common errors returned by the signature functions.
var (
	// ErrInvalidTime indicates a zero time value was supplied.
	ErrInvalidTime = errors.New("otp: time must not be zero")
	// ErrInvalidSecret indicates a secret could not be decoded.
	ErrInvalidSecret = errors.New("otp: invalid secret")
)

// DecodeSecret decodes a standard base64 secret into the raw key bytes used
// for HMAC. Surrounding whitespace is ignored.
func DecodeSecret(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: secret must not be empty", ErrInvalidSecret)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: secret decodes to zero bytes", ErrInvalidSecret)
	}
	return raw, nil
}

// GenerateCode derives the login code for the time step containing t.
func GenerateCode(secret []byte, t uint32) (string, error) {
	if t == 0 {
		return "", ErrInvalidTime
	}

	codePoint := truncate(secret, int64(t)/Period)

	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(Alphabet[codePoint%uint32(len(Alphabet))])
		codePoint /= uint32(len(Alphabet))
	}
	return b.String(), nil
}

// GenerateConfirmationKey signs t and tag with the identity secret and
// returns the base64 encoded HMAC-SHA1 digest.
func GenerateConfirmationKey(secret []byte, t uint32, tag string) (string, error) {
	if t == 0 {
		return "", ErrInvalidTime
	}

	mac := hmac.New(sha1.New, secret)
	mac.Write(confirmationMessage(t, tag))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// truncate applies HOTP dynamic truncation to the HMAC-SHA1 of counter.
func truncate(secret []byte, counter int64) uint32 {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, secret)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0F
	return uint32(sum[offset]&0x7F)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])
}

// confirmationMessage lays out the signed buffer: the time widened to a
// big-endian int64 followed by at most MaxTagLength bytes of tag.
func confirmationMessage(t uint32, tag string) []byte {
	n := len(tag)
	if n > MaxTagLength {
		n = MaxTagLength
	}
	buf := make([]byte, 8+n)
	binary.BigEndian.PutUint64(buf, uint64(t))
	copy(buf[8:], tag[:n])
	return buf
}
