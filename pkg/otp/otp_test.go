package otp

import (
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	potp "github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rfcSecret is the SHA1 seed from RFC 6238 Appendix B.
var rfcSecret = []byte("12345678901234567890")

func mustDecode(t *testing.T, encoded string) []byte {
	t.Helper()
	raw, err := DecodeSecret(encoded)
	require.NoError(t, err)
	return raw
}

func TestDecodeSecret(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		wantLen int
		wantErr error
	}{
		{name: "twelve zero bytes", encoded: "AAAAAAAAAAAAAAAA", wantLen: 12},
		{name: "surrounding whitespace", encoded: "  AAAAAAAAAAAAAAAA\n", wantLen: 12},
		{name: "empty", encoded: "", wantErr: ErrInvalidSecret},
		{name: "blank", encoded: "   ", wantErr: ErrInvalidSecret},
		{name: "not base64", encoded: "not*base64!", wantErr: ErrInvalidSecret},
		{name: "bad padding", encoded: "AAAAA", wantErr: ErrInvalidSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := DecodeSecret(tt.encoded)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, raw)
				return
			}
			require.NoError(t, err)
			assert.Len(t, raw, tt.wantLen)
		})
	}
}

func TestGenerateCode(t *testing.T) {
	zero := mustDecode(t, "AAAAAAAAAAAAAAAA")
	shared := mustDecode(t, "c2hhcmVkc2VjcmV0c2hhcmVkc2VjcmV0")

	tests := []struct {
		name   string
		secret []byte
		time   uint32
		want   string
	}{
		{name: "zero secret regression vector", secret: zero, time: 1000000000, want: "2W3J6"},
		{name: "next step", secret: zero, time: 1000000029, want: "QB5WG"},
		{name: "same step as previous", secret: zero, time: 1000000030, want: "QB5WG"},
		{name: "non-trivial secret", secret: shared, time: 1700000000, want: "R5QM8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := GenerateCode(tt.secret, tt.time)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestGenerateCode_ZeroTime(t *testing.T) {
	code, err := GenerateCode(mustDecode(t, "AAAAAAAAAAAAAAAA"), 0)
	assert.ErrorIs(t, err, ErrInvalidTime)
	assert.Empty(t, code)
}

func TestGenerateCode_Alphabet(t *testing.T) {
	secret := mustDecode(t, "c2hhcmVkc2VjcmV0c2hhcmVkc2VjcmV0")

	for ts := uint32(1); ts < 1<<31; ts += 7919 * 30 {
		code, err := GenerateCode(secret, ts)
		require.NoError(t, err)
		require.Len(t, code, CodeLength)
		for _, r := range code {
			require.Truef(t, strings.ContainsRune(Alphabet, r), "symbol %q not in alphabet", r)
		}

		again, err := GenerateCode(secret, ts)
		require.NoError(t, err)
		require.Equal(t, code, again)
	}
}

func TestGenerateCode_StepBoundaries(t *testing.T) {
	secret := mustDecode(t, "AAAAAAAAAAAAAAAA")

	first, err := GenerateCode(secret, 999999990)
	require.NoError(t, err)
	last, err := GenerateCode(secret, 1000000019)
	require.NoError(t, err)
	next, err := GenerateCode(secret, 1000000020)
	require.NoError(t, err)
	prev, err := GenerateCode(secret, 999999989)
	require.NoError(t, err)

	assert.Equal(t, "2W3J6", first)
	assert.Equal(t, first, last)
	assert.Equal(t, "QB5WG", next)
	assert.Equal(t, "GCT9D", prev)
}

// TestTruncate_RFC6238 checks dynamic truncation against the RFC 6238 SHA1
// vectors reduced to eight decimal digits.
func TestTruncate_RFC6238(t *testing.T) {
	tests := []struct {
		time int64
		want string
	}{
		{time: 59, want: "94287082"},
		{time: 1111111109, want: "07081804"},
		{time: 1111111111, want: "14050471"},
		{time: 1234567890, want: "89005924"},
		{time: 2000000000, want: "69279037"},
		{time: 20000000000, want: "65353130"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("T=%d", tt.time), func(t *testing.T) {
			got := fmt.Sprintf("%08d", truncate(rfcSecret, tt.time/Period)%100000000)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate_MatchesReferenceHOTP(t *testing.T) {
	encoded := base32.StdEncoding.EncodeToString(rfcSecret)

	for counter := uint64(0); counter < 500; counter++ {
		want, err := hotp.GenerateCodeCustom(encoded, counter, hotp.ValidateOpts{
			Digits:    potp.DigitsEight,
			Algorithm: potp.AlgorithmSHA1,
		})
		require.NoError(t, err)

		got := fmt.Sprintf("%08d", truncate(rfcSecret, int64(counter))%100000000)
		require.Equalf(t, want, got, "counter %d", counter)
	}
}

func TestGenerateConfirmationKey(t *testing.T) {
	zero := mustDecode(t, "AAAAAAAAAAAAAAAA")
	identity := mustDecode(t, "aWRlbnRpdHlzZWNyZXRpZGVudGl0eQ==")

	tests := []struct {
		name   string
		secret []byte
		time   uint32
		tag    string
		want   string
	}{
		{name: "conf tag", secret: zero, time: 1000000000, tag: TagConfirmations, want: "8k3i7HtvxPAfSJnYZUQjsWN+Y64="},
		{name: "no tag", secret: zero, time: 1000000000, tag: "", want: "2a6SG9m6aPn76D5YZXnddFO8wvo="},
		{name: "details tag", secret: zero, time: 1000000000, tag: TagDetails, want: "aQFppMnLCseIBGsOB34CsDugN/s="},
		{name: "identity secret", secret: identity, time: 1000000000, tag: TagConfirmations, want: "tGQ8L6NkFmf/E3M/uSq1qlTu1Lk="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := GenerateConfirmationKey(tt.secret, tt.time, tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sig)
		})
	}
}

func TestGenerateConfirmationKey_ZeroTime(t *testing.T) {
	secret := mustDecode(t, "AAAAAAAAAAAAAAAA")

	for _, tag := range []string{"", TagConfirmations, TagAllow, strings.Repeat("x", 64)} {
		sig, err := GenerateConfirmationKey(secret, 0, tag)
		assert.ErrorIs(t, err, ErrInvalidTime, "tag %q", tag)
		assert.Empty(t, sig)
	}
}

func TestGenerateConfirmationKey_TagTruncation(t *testing.T) {
	secret := mustDecode(t, "aWRlbnRpdHlzZWNyZXRpZGVudGl0eQ==")
	prefix := strings.Repeat("t", MaxTagLength)

	a, err := GenerateConfirmationKey(secret, 1000000000, prefix+"-first")
	require.NoError(t, err)
	b, err := GenerateConfirmationKey(secret, 1000000000, prefix+"-second-longer")
	require.NoError(t, err)
	c, err := GenerateConfirmationKey(secret, 1000000000, prefix)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)

	d, err := GenerateConfirmationKey(secret, 1000000000, prefix[:MaxTagLength-1])
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestConfirmationMessage(t *testing.T) {
	tests := []struct {
		name    string
		time    uint32
		tag     string
		wantLen int
	}{
		{name: "no tag", time: 1000000000, tag: "", wantLen: 8},
		{name: "short tag", time: 1, tag: "conf", wantLen: 12},
		{name: "max uint32", time: 0xFFFFFFFF, tag: "allow", wantLen: 13},
		{name: "exact max tag", time: 42, tag: strings.Repeat("a", MaxTagLength), wantLen: 8 + MaxTagLength},
		{name: "long tag", time: 42, tag: strings.Repeat("a", 100), wantLen: 8 + MaxTagLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := confirmationMessage(tt.time, tt.tag)
			require.Len(t, msg, tt.wantLen)
			assert.Equal(t, uint64(tt.time), binary.BigEndian.Uint64(msg[:8]))
			assert.Equal(t, []byte{0, 0, 0, 0}, msg[:4], "time is widened to 64 bits")
			assert.Equal(t, tt.tag[:tt.wantLen-8], string(msg[8:]))
		})
	}
}
