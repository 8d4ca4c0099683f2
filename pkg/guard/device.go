package guard

import (
	"crypto/sha1"
	"strconv"

	"github.com/google/uuid"
)

// DeviceIDPrefix marks identifiers in the format the mobile app registers.
const DeviceIDPrefix = "android:"

// DeriveDeviceID returns the conventional device identifier for accountID:
// the first 16 bytes of the SHA-1 of its decimal form, formatted as a UUID.
func DeriveDeviceID(accountID uint64) string {
	sum := sha1.Sum([]byte(strconv.FormatUint(accountID, 10)))
	id, _ := uuid.FromBytes(sum[:16])
	return DeviceIDPrefix + id.String()
}
