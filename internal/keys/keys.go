package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/golang-jwt/jwt/v5"
)

// The API signs tokens with the private key and verifies with the public key,
// so verification can be distributed to read-only replicas that never hold
// signing material.

const (
	PrivateFileName = "private.pem"
	PublicFileName  = "public.pem"

	rsaBits = 2048
)

// Pair is the loaded, parsed key material. Read-only after startup.
type Pair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// Ensure guarantees a consistent PEM pair under dir before any token
// operation runs:
// - both files present: keep them as-is
// - neither present: generate a fresh pair
// - exactly one present: treat as corrupted state, delete the stray file and
//   regenerate both
//
// Any failure here must be treated as fatal by the caller; the process must
// not serve requests without a verifiable key pair.
func Ensure(dir string, log *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("keys: create dir: %w", err)
	}

	privPath := filepath.Join(dir, PrivateFileName)
	pubPath := filepath.Join(dir, PublicFileName)

	privExists := fileExists(privPath)
	pubExists := fileExists(pubPath)

	if privExists && pubExists {
		return nil
	}

	if privExists != pubExists {
		log.Warn("key pair is inconsistent, regenerating both", "dir", dir)
		for _, p := range []string{privPath, pubPath} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("keys: remove stray key: %w", err)
			}
		}
	}

	return generate(privPath, pubPath)
}

// Load reads and parses the PEM pair from dir.
func Load(dir string) (Pair, error) {
	privBytes, err := os.ReadFile(filepath.Join(dir, PrivateFileName))
	if err != nil {
		return Pair{}, fmt.Errorf("keys: read private key: %w", err)
	}
	pubBytes, err := os.ReadFile(filepath.Join(dir, PublicFileName))
	if err != nil {
		return Pair{}, fmt.Errorf("keys: read public key: %w", err)
	}

	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return Pair{}, fmt.Errorf("keys: parse private key: %w", err)
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return Pair{}, fmt.Errorf("keys: parse public key: %w", err)
	}

	return Pair{Private: priv, Public: pub}, nil
}

func generate(privPath, pubPath string) error {
	key, err := rsa.GenerateKey(rand.Reader, rsaBits)
	if err != nil {
		return fmt.Errorf("keys: generate rsa key: %w", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return fmt.Errorf("keys: marshal public key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})

	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		return fmt.Errorf("keys: write private key: %w", err)
	}
	if err := os.WriteFile(pubPath, pubPEM, 0o600); err != nil {
		// Do not leave a half-written pair behind.
		_ = os.Remove(privPath)
		return fmt.Errorf("keys: write public key: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
