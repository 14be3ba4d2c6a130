package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/constants"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Argon2Hasher produces PHC-formatted Argon2id hashes with a fresh salt per call.
type Argon2Hasher struct {
	rand    io.Reader
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
}

// NewArgon2Hasher uses source for salts; nil means crypto/rand.
func NewArgon2Hasher(source io.Reader) *Argon2Hasher {
	if source == nil {
		source = rand.Reader
	}
	return &Argon2Hasher{
		rand:    source,
		time:    constants.Argon2Time,
		memory:  constants.Argon2Memory,
		threads: constants.Argon2Threads,
		keyLen:  constants.Argon2KeyLen,
	}
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, constants.Argon2SaltSize)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, h.keyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory,
		h.time,
		h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}
