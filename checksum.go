package mlfairy

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ChecksumAlgorithm is the only digest algorithm this package can verify.
// Metadata declaring any other algorithm skips verification.
const ChecksumAlgorithm = "md5"

// verifyArtifact checks the file at path against the hash declared in md.
//
// Verification is deliberately lenient: if the metadata declares no hash or
// no algorithm, or declares an algorithm this package does not support, the
// artifact is accepted unverified. This is a leniency policy, not a
// security guarantee.
//
// On a mismatch the local file is deleted before ErrChecksumMismatch is
// returned, so a corrupt artifact cannot be picked up by a later run's
// cache check. A failure to compute the digest returns an error wrapping
// ErrChecksum and leaves the file in place.
func verifyArtifact(storage Storage, logger Logger, md ModelMetadata, path string) error {
	if md.Hash == "" || md.Algorithm == "" {
		if logger != nil {
			logger.Debug("no checksum declared, skipping verification", "token", md.Token)
		}
		return nil
	}

	if !strings.EqualFold(md.Algorithm, ChecksumAlgorithm) {
		if logger != nil {
			logger.Debug("unsupported checksum algorithm, skipping verification",
				"token", md.Token, "algorithm", md.Algorithm, "supported", ChecksumAlgorithm)
		}
		return nil
	}

	digest, err := storage.Digest(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChecksum, err)
	}

	if base64.StdEncoding.EncodeToString(digest) != md.Hash {
		if derr := storage.DeleteFile(path); derr != nil && logger != nil {
			logger.Warn("failed to delete corrupt artifact", "path", path, "error", derr)
		}
		return fmt.Errorf("artifact %s: %w", path, ErrChecksumMismatch)
	}

	return nil
}
