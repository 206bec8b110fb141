package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// TemporaryPasswordAlphabet avoids characters that are easy to misread when
// a password is read aloud or copied from a terminal.
const TemporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

const temporaryPasswordLength = 14

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString returns a cryptographically secure, unbiased string of the requested length.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 {
		return "", errEmptyAlphabet
	}

	limit := big.NewInt(int64(len(alphabet)))
	value := make([]byte, length)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position.Int64()]
	}

	return string(value), nil
}

// TemporaryPassword is what the admin CLI hands out; the account is flagged
// so the holder must replace it.
func TemporaryPassword() (string, error) {
	return RandomString(temporaryPasswordLength, TemporaryPasswordAlphabet)
}
