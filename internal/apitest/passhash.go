package apitest

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters, lowered so test suites stay fast.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 8 * 1024 // 8 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

type passwordHash struct {
	salt []byte
	sum  []byte
}

func hashPassword(password string) (passwordHash, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return passwordHash{}, err
	}
	return passwordHash{salt: salt, sum: derive(password, salt)}, nil
}

func derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

func (h passwordHash) verify(password string) bool {
	return subtle.ConstantTimeCompare(derive(password, h.salt), h.sum) == 1
}
