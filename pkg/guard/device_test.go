package guard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDeviceID(t *testing.T) {
	tests := []struct {
		accountID uint64
		want      string
	}{
		{accountID: 76561198000000000, want: "android:5c9df5a2-d7de-1e2c-8fc8-766523ca130f"},
		{accountID: 0, want: "android:b6589fc6-ab0d-c82c-f120-99d1c2d40ab9"},
	}

	for _, tt := range tests {
		got := DeriveDeviceID(tt.accountID)
		assert.Equal(t, tt.want, got)
		assert.True(t, strings.HasPrefix(got, DeviceIDPrefix))
	}

	assert.Equal(t, DeriveDeviceID(42), DeriveDeviceID(42))
	assert.NotEqual(t, DeriveDeviceID(42), DeriveDeviceID(43))
}

func TestSecret_Redacted(t *testing.T) {
	s, err := NewSecret(testIdentitySecret)
	if !assert.NoError(t, err) {
		return
	}
	defer s.Destroy()

	assert.Equal(t, "[REDACTED]", s.String())
	assert.NotContains(t, s.GoString(), "identity")

	key, err := s.key()
	assert.NoError(t, err)
	assert.Equal(t, []byte("identitysecretidentity"), key)

	s.Destroy()
	_, err = s.key()
	assert.ErrorIs(t, err, ErrClosed)
}
