package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength = 16
	ivLength   = aes.BlockSize
	keyLength  = 32 // AES-256
	iterations = 100000
)

// DecryptionFailedError covers every failure mode of Open: truncated blobs,
// padding mismatches, and cipher errors. A wrong password and corrupted data
// are deliberately indistinguishable so the error cannot be used as an
// oracle.
type DecryptionFailedError struct {
	Reason string
}

func (e *DecryptionFailedError) Error() string {
	return fmt.Sprintf("decryption failed: %s", e.Reason)
}

// Envelope encrypts and decrypts payloads with a password-derived key.
//
// The sealed format is salt(16) || iv(16) || AES-256-CBC ciphertext, with the
// key derived via PBKDF2-HMAC-SHA256 over (password, salt) at 100,000
// iterations and the plaintext padded with PKCS#7 to the cipher block size.
type Envelope struct {
	password []byte
}

// NewEnvelope creates an envelope for the given password. The password must
// not be empty.
func NewEnvelope(password string) (*Envelope, error) {
	if password == "" {
		return nil, &DecryptionFailedError{Reason: "password cannot be empty"}
	}
	return &Envelope{password: []byte(password)}, nil
}

func (e *Envelope) deriveKey(salt []byte) []byte {
	return pbkdf2.Key(e.password, salt, iterations, keyLength, sha256.New)
}

// Seal encrypts plaintext and returns the sealed blob. A fresh random salt
// and IV are drawn from crypto/rand for every call, so sealing the same
// plaintext twice yields different blobs.
func (e *Envelope) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	iv := make([]byte, ivLength)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	block, err := aes.NewCipher(e.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	padded := padPKCS7(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	blob := make([]byte, 0, saltLength+ivLength+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, iv...)
	blob = append(blob, ciphertext...)
	return blob, nil
}

// Open decrypts a blob produced by Seal and returns the plaintext. Every
// failure surfaces as a *DecryptionFailedError.
func (e *Envelope) Open(blob []byte) ([]byte, error) {
	if len(blob) < saltLength+ivLength {
		return nil, &DecryptionFailedError{Reason: "encrypted data too short"}
	}
	salt := blob[:saltLength]
	iv := blob[saltLength : saltLength+ivLength]
	ciphertext := blob[saltLength+ivLength:]

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, &DecryptionFailedError{Reason: "ciphertext is not block-aligned"}
	}

	block, err := aes.NewCipher(e.deriveKey(salt))
	if err != nil {
		return nil, &DecryptionFailedError{Reason: err.Error()}
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, ok := unpadPKCS7(padded, aes.BlockSize)
	if !ok {
		return nil, &DecryptionFailedError{Reason: "invalid padding"}
	}
	return plaintext, nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// unpadPKCS7 validates and strips PKCS#7 padding. Validation runs in time
// independent of the padding contents.
func unpadPKCS7(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, false
	}
	pad := data[len(data)-padLen:]
	expected := bytes.Repeat([]byte{byte(padLen)}, padLen)
	if subtle.ConstantTimeCompare(pad, expected) != 1 {
		return nil, false
	}
	return data[:len(data)-padLen], true
}
