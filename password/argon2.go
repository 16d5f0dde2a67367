package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const algorithmID = "argon2id"

var (
	// ErrHashFormat indicates an encoded hash that is not valid PHC
	// argon2id output.
	ErrHashFormat = errors.New("invalid password hash format")
	// ErrWeakParams indicates hasher parameters below the floor.
	ErrWeakParams = errors.New("password hash parameters too weak")
)

// Params are the argon2id cost parameters. Memory is in KiB.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns the parameters used when no explicit tuning is
// supplied: 64 MiB, 3 passes, 2 lanes.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (p Params) validate() error {
	if p.Memory < 8*1024 || p.Time < 1 || p.Parallelism < 1 ||
		p.SaltLength < 16 || p.KeyLength < 16 {
		return ErrWeakParams
	}
	return nil
}

// Hasher hashes and verifies passwords using argon2id with PHC-format
// encoded output. Safe for concurrent use.
type Hasher struct {
	params Params
}

// NewHasher creates a Hasher, rejecting parameters below the floor.
func NewHasher(params Params) (*Hasher, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &Hasher{params: params}, nil
}

// Hash derives an encoded argon2id hash with a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Time,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the encoded hash, using the
// cost parameters recorded in the hash itself.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	params, salt, key, err := decode(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(password),
		salt,
		params.Time,
		params.Memory,
		params.Parallelism,
		uint32(len(key)),
	)
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// NeedsRehash reports whether encoded was produced with costs below
// the hasher's current parameters.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	params, _, key, err := decode(encoded)
	if err != nil {
		return false, err
	}
	return params.Memory < h.params.Memory ||
		params.Time < h.params.Time ||
		params.Parallelism < h.params.Parallelism ||
		uint32(len(key)) != h.params.KeyLength, nil
}

func decode(encoded string) (Params, []byte, []byte, error) {
	var params Params
	var version int
	var saltB64, keyB64 string

	n, err := fmt.Sscanf(
		encoded,
		"$"+algorithmID+"$v=%d$m=%d,t=%d,p=%d$%s",
		&version, &params.Memory, &params.Time, &params.Parallelism, &saltB64,
	)
	if err != nil || n != 5 {
		return params, nil, nil, ErrHashFormat
	}
	if version != argon2.Version {
		return params, nil, nil, ErrHashFormat
	}

	// Sscanf stops %s at whitespace, not '$'; split the tail manually.
	for i := 0; i < len(saltB64); i++ {
		if saltB64[i] == '$' {
			keyB64 = saltB64[i+1:]
			saltB64 = saltB64[:i]
			break
		}
	}
	if keyB64 == "" {
		return params, nil, nil, ErrHashFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(saltB64)
	if err != nil || len(salt) == 0 {
		return params, nil, nil, ErrHashFormat
	}
	key, err := base64.RawStdEncoding.DecodeString(keyB64)
	if err != nil || len(key) == 0 {
		return params, nil, nil, ErrHashFormat
	}

	return params, salt, key, nil
}
