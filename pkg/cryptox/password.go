package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported hashing algorithm names, as used in configuration.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

var (
	// ErrMismatch is returned when a password does not match its hash.
	ErrMismatch = errors.New("password does not match")

	// ErrUnknownAlgorithm is returned for hashes or configuration naming an
	// algorithm we do not implement.
	ErrUnknownAlgorithm = errors.New("cryptox: unknown password hash algorithm")
)

// Hasher hashes passwords for storage and verifies candidates against
// stored hashes.
type Hasher interface {
	// Hash returns a self-describing encoded hash of password.
	Hash(password string) (string, error)

	// Verify returns nil when password matches encodedHash and ErrMismatch
	// when it does not. Malformed hashes return a descriptive error.
	Verify(password, encodedHash string) error
}

// NewHasher returns the Hasher for the named algorithm. Hashes produced by
// any supported algorithm verify through the returned Hasher, so changing
// the configured algorithm never locks out existing users.
func NewHasher(algorithm, pepper string) (Hasher, error) {
	argon := &Argon2idHasher{Pepper: pepper}
	bc := &BcryptHasher{Cost: bcrypt.DefaultCost, Pepper: pepper}

	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmArgon2id:
		return &multiHasher{primary: argon, argon: argon, bcrypt: bc}, nil
	case AlgorithmBcrypt:
		return &multiHasher{primary: bc, argon: argon, bcrypt: bc}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// multiHasher hashes with the configured algorithm and verifies with
// whichever algorithm produced the stored hash.
type multiHasher struct {
	primary Hasher
	argon   *Argon2idHasher
	bcrypt  *BcryptHasher
}

func (m *multiHasher) Hash(password string) (string, error) {
	return m.primary.Hash(password)
}

func (m *multiHasher) Verify(password, encodedHash string) error {
	switch {
	case strings.HasPrefix(encodedHash, "$argon2id$"):
		return m.argon.Verify(password, encodedHash)
	case isBcryptHash(encodedHash):
		return m.bcrypt.Verify(password, encodedHash)
	default:
		return ErrUnknownAlgorithm
	}
}

func isBcryptHash(encodedHash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encodedHash, prefix) {
			return true
		}
	}
	return false
}

// Argon2idHasher produces PHC-format Argon2id hashes. Pepper is appended to
// every password before hashing and is never stored alongside the hash.
type Argon2idHasher struct {
	Pepper string
}

// Hash generates a PHC-format Argon2id hash string including salt and parameters.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey(
		[]byte(password+h.Pepper),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// Return PHC-style encoded string
	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		b64Salt,
		b64Hash,
	), nil
}

// Verify compares a plaintext password against a PHC-style Argon2id hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) error {
	// Validate structure: ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return errors.New("invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return errors.New("invalid hash format: not argon2id")
	}
	if parts[2] != "v=19" {
		return errors.New("invalid hash format: wrong version")
	}

	var mem, iters uint32
	var par uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par)
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode salt: %w", err)
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode hash: %w", err)
	}

	computed := argon2.IDKey(
		[]byte(password+h.Pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(expectedHash)), // #nosec G115 - If this overflows we have bigger problems
	)

	if subtle.ConstantTimeCompare(computed, expectedHash) == 1 {
		return nil
	}
	return ErrMismatch
}

// BcryptHasher produces bcrypt hashes at the given cost. The peppered
// password is reduced with SHA-256 first, so inputs of any length fit within
// bcrypt's 72 byte limit.
type BcryptHasher struct {
	Cost   int
	Pepper string
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword(h.prehash(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(password, encodedHash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), h.prehash(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

// prehash returns base64(SHA-256(password + pepper)), 44 bytes with no NULs.
func (h *BcryptHasher) prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password + h.Pepper))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
