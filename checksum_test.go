package mlfairy

import (
	"errors"
	"testing"
)

func TestVerifyArtifact(t *testing.T) {
	artifact := []byte("known artifact bytes")

	newStorageWithArtifact := func(md ModelMetadata) (*fakeStorage, string) {
		st := newFakeStorage()
		path := st.destinationPath(md)
		st.putFile(path, artifact)
		return st, path
	}

	t.Run("matching hash passes", func(t *testing.T) {
		md := ModelMetadata{Token: "t", ActiveVersion: "v1", Hash: md5Base64(artifact), Algorithm: "md5"}
		st, path := newStorageWithArtifact(md)

		if err := verifyArtifact(st, nil, md, path); err != nil {
			t.Errorf("verifyArtifact() error = %v, want nil", err)
		}
		if !st.Exists(path) {
			t.Error("artifact was deleted on a passing verification")
		}
	})

	t.Run("no hash declared skips verification", func(t *testing.T) {
		md := ModelMetadata{Token: "t", ActiveVersion: "v1", Algorithm: "md5"}
		st, path := newStorageWithArtifact(md)

		if err := verifyArtifact(st, nil, md, path); err != nil {
			t.Errorf("verifyArtifact() error = %v, want nil", err)
		}
	})

	t.Run("no algorithm declared skips verification", func(t *testing.T) {
		md := ModelMetadata{Token: "t", ActiveVersion: "v1", Hash: "anything"}
		st, path := newStorageWithArtifact(md)

		if err := verifyArtifact(st, nil, md, path); err != nil {
			t.Errorf("verifyArtifact() error = %v, want nil", err)
		}
	})

	t.Run("unsupported algorithm skips verification", func(t *testing.T) {
		md := ModelMetadata{Token: "t", ActiveVersion: "v1", Hash: "not-a-match", Algorithm: "sha512"}
		st, path := newStorageWithArtifact(md)

		if err := verifyArtifact(st, nil, md, path); err != nil {
			t.Errorf("verifyArtifact() error = %v, want nil", err)
		}
		if !st.Exists(path) {
			t.Error("artifact was deleted when verification should have been skipped")
		}
	})

	t.Run("algorithm match is case-insensitive", func(t *testing.T) {
		md := ModelMetadata{Token: "t", ActiveVersion: "v1", Hash: md5Base64(artifact), Algorithm: "MD5"}
		st, path := newStorageWithArtifact(md)

		if err := verifyArtifact(st, nil, md, path); err != nil {
			t.Errorf("verifyArtifact() error = %v, want nil", err)
		}
	})

	t.Run("mismatch deletes file and returns ErrChecksumMismatch", func(t *testing.T) {
		md := ModelMetadata{Token: "t", ActiveVersion: "v1", Hash: md5Base64([]byte("other bytes")), Algorithm: "md5"}
		st, path := newStorageWithArtifact(md)

		err := verifyArtifact(st, nil, md, path)
		if !errors.Is(err, ErrChecksumMismatch) {
			t.Errorf("verifyArtifact() error = %v, want ErrChecksumMismatch", err)
		}
		if st.Exists(path) {
			t.Error("artifact still exists after mismatch, want deleted")
		}
	})

	t.Run("digest failure wraps ErrChecksum and keeps file", func(t *testing.T) {
		md := ModelMetadata{Token: "t", ActiveVersion: "v1", Hash: md5Base64(artifact), Algorithm: "md5"}
		st, path := newStorageWithArtifact(md)
		st.digestErr = errors.New("read error")

		err := verifyArtifact(st, nil, md, path)
		if !errors.Is(err, ErrChecksum) {
			t.Errorf("verifyArtifact() error = %v, want ErrChecksum", err)
		}
		if !st.Exists(path) {
			t.Error("artifact was deleted on a digest failure, want kept")
		}
	})
}
