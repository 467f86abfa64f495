package gateways

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// ChecksumCalculator computes SHA-256 digests of archive artifacts for reports
type ChecksumCalculator struct{}

// NewChecksumCalculator creates a new checksum calculator
func NewChecksumCalculator() *ChecksumCalculator {
	return &ChecksumCalculator{}
}

// CalculateChecksum calculates the SHA256 checksum of a file
func (c *ChecksumCalculator) CalculateChecksum(filePath string) (string, error) {
	//nolint:gosec // G304: File path comes from the scanned plugins directory
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
