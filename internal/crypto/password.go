package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// passwordAlphabet is the character set for generated passwords: letters,
// digits, and a small symbol set.
const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"

// GeneratePassword returns a random password of the requested length drawn
// uniformly from the password alphabet.
//
// Characters are chosen by rejection sampling over crypto/rand bytes: bytes
// outside the largest multiple of the alphabet size are discarded instead of
// reduced modulo, which would bias the distribution toward the front of the
// alphabet.
func GeneratePassword(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("password length must be at least 1, got %d", length)
	}

	// Largest byte value usable without modulo bias.
	limit := byte(256 - 256%len(passwordAlphabet))

	out := make([]byte, length)
	buf := make([]byte, 1)
	for i := 0; i < length; {
		if _, err := io.ReadFull(rand.Reader, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		if buf[0] >= limit {
			continue
		}
		out[i] = passwordAlphabet[int(buf[0])%len(passwordAlphabet)]
		i++
	}
	return string(out), nil
}
