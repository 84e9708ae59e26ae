package service

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, invalidInput("malformed id %q", raw)
	}
	return id, nil
}

const (
	trackingCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	trackingCodeLength   = 8
)

// NewTrackingCode returns a random code without look-alike characters (0/O, 1/I/L).
func NewTrackingCode() (string, error) {
	return randomString(trackingCodeAlphabet, trackingCodeLength)
}

// NormalizeTrackingCode upper-cases a code typed by a person.
func NormalizeTrackingCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func newTemporaryPassword() (string, error) {
	return randomString(passwordAlphabet, 12)
}

func randomString(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}
