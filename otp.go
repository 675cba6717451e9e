package access

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// OTPLength is the number of digits in a recovery code
const OTPLength = 6

// OTPTTL is the absolute lifetime of a recovery code. Expired codes are never
// purged, only rejected when presented.
const OTPTTL = 10 * time.Minute

var otpRange = big.NewInt(900_000)

// GenerateOTP returns a uniformly random 6-digit numeric code in the range
// 100000-999999 inclusive.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate recovery code")
	}
	return strconv.FormatInt(n.Int64()+100_000, 10), nil
}
