package password

import (
	"crypto/rand"
	"math/big"
)

const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
	symbols   = "!@#$%^&*()-_=+[]{}<>?"

	simpleAlphabet = lowercase + uppercase + digits
	strongAlphabet = simpleAlphabet + symbols
)

// Generate produces a 24-char password including symbols.
// You should only generate passwords with size >= 10.
func Generate() (string, error) {
	return GenerateSized(24)
}

// GenerateSized produces a password of the given size from the full alphabet
// (lower, upper, digits, symbols).
func GenerateSized(size int) (string, error) {
	return fromAlphabet(strongAlphabet, size)
}

// GenerateSimpleSized produces an alphanumeric string of the given size.
// No symbols, so it is safe to embed in URLs and headers. This is the
// generator used for refresh tokens: collision-resistant and unguessable,
// but deliberately a weaker entropy class than a hashed credential.
func GenerateSimpleSized(size int) (string, error) {
	return fromAlphabet(simpleAlphabet, size)
}

func fromAlphabet(alphabet string, size int) (string, error) {
	out := make([]byte, size)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
