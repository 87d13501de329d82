// Package cryptotext decrypts the protected justification fields carried by
// evaluation and survey records. Payloads are AES-256-CBC with the IV prepended
// in the form "<ivBase64>:<payloadBase64>".
package cryptotext

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// DecryptionFailed is substituted for a field whose ciphertext decodes but
// cannot be deciphered. A corrupted field must not abort summarization.
const DecryptionFailed = "[DECRYPTION ERROR]"

const keySize = 32

// Codec encrypts and decrypts field values with a key derived from the
// configured secret. It holds no mutable state and is safe for concurrent use.
type Codec struct {
	key []byte
}

// NewCodec derives the cipher key from the secret by truncating or
// zero-padding it to 32 bytes.
func NewCodec(secret string) *Codec {
	key := make([]byte, keySize)
	copy(key, secret)
	return &Codec{key: key}
}

// Decrypt reverses Encrypt. It never returns an error: empty or malformed
// input (no ":" separator) yields "", and input that decodes but cannot be
// deciphered yields the DecryptionFailed sentinel.
func (c *Codec) Decrypt(cipherText string) string {
	if cipherText == "" {
		return ""
	}

	ivPart, payloadPart, found := strings.Cut(cipherText, ":")
	if !found {
		return ""
	}

	iv, err := base64.StdEncoding.DecodeString(ivPart)
	if err != nil {
		return DecryptionFailed
	}
	payload, err := base64.StdEncoding.DecodeString(payloadPart)
	if err != nil {
		return DecryptionFailed
	}

	plain, err := c.decipher(iv, payload)
	if err != nil {
		return DecryptionFailed
	}
	return string(plain)
}

// Encrypt produces "<ivBase64>:<payloadBase64>" with a random IV. It exists
// for fixtures and for the decrypt(encrypt(x)) == x property; production
// records are encrypted by the owning subsystem.
func (c *Codec) Encrypt(plain string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pad([]byte(plain), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return base64.StdEncoding.EncodeToString(iv) + ":" + base64.StdEncoding.EncodeToString(out), nil
}

func (c *Codec) decipher(iv, payload []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("invalid IV length: %d", len(iv))
	}
	if len(payload) == 0 || len(payload)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("invalid payload length: %d", len(payload))
	}

	plain := make([]byte, len(payload))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, payload)

	return unpad(plain, aes.BlockSize)
}

// pad applies PKCS#7 padding.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// unpad removes PKCS#7 padding, rejecting inconsistent pad bytes.
func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding length: %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-n], nil
}
