package gpg

import (
	"context"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// SignatureExtension is appended to a report path to name its signature
const SignatureExtension = ".asc"

// Signer writes armored detached signatures with a private key
type Signer struct {
	entity *openpgp.Entity
}

// NewSigner loads the first private key of keyPath, decrypting it with
// passphrase when it is protected
func NewSigner(keyPath string, passphrase []byte) (*Signer, error) {
	entities, err := readKeyRing(keyPath)
	if err != nil {
		return nil, err
	}

	for _, entity := range entities {
		if entity.PrivateKey == nil {
			continue
		}
		if entity.PrivateKey.Encrypted {
			if len(passphrase) == 0 {
				return nil, fmt.Errorf("signing key is encrypted and no passphrase was given")
			}
			if err := entity.DecryptPrivateKeys(passphrase); err != nil {
				return nil, fmt.Errorf("failed to decrypt signing key: %w", err)
			}
		}
		return &Signer{entity: entity}, nil
	}

	return nil, fmt.Errorf("no private key found in %s", keyPath)
}

// SignFile writes <filePath>.asc and returns its path
func (s *Signer) SignFile(ctx context.Context, filePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	//nolint:gosec // G304: filePath is the report written by this run
	data, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open report: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer data.Close()

	sigPath := filePath + SignatureExtension
	//nolint:gosec // G304: signature path is derived from the report path
	out, err := os.OpenFile(sigPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create signature file: %w", err)
	}

	if err := openpgp.ArmoredDetachSign(out, s.entity, data, nil); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to sign report: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write signature file: %w", err)
	}

	return sigPath, nil
}
