package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireLocalFS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fsType  string
		detErr  error
		wantErr error
	}{
		{name: "ext4", fsType: "0xef53"},
		{name: "apfs", fsType: "apfs"},
		{name: "nfs", fsType: "nfs", wantErr: ErrNetworkFilesystem},
		{name: "smb uppercase", fsType: " SMBFS ", wantErr: ErrNetworkFilesystem},
		{name: "unsupported platform", detErr: errDetectUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "charterhook.db")
			err := requireLocalFS(path, func(string) (string, error) { return tt.fsType, tt.detErr })
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "local disk")
		})
	}
}

func TestRequireLocalFSDetectorError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "charterhook.db")
	err := requireLocalFS(path, func(string) (string, error) { return "", errors.New("statfs: permission denied") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detect filesystem")
}

func TestRequireLocalFSInspectsNearestExistingDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	var inspected string
	err := requireLocalFS(filepath.Join(root, "a", "b", "charterhook.db"), func(p string) (string, error) {
		inspected = p
		return "apfs", nil
	})
	require.NoError(t, err)
	assert.Equal(t, root, inspected)
}
