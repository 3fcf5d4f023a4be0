package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNetworkFilesystem is returned when a database path resolves to a network mount.
var ErrNetworkFilesystem = errors.New("sqlite database on network filesystem")

var remoteFSTypes = map[string]struct{}{
	"afpfs":  {},
	"cifs":   {},
	"nfs":    {},
	"smbfs":  {},
	"smb2":   {},
	"webdav": {},
}

type fsDetector func(path string) (string, error)

// requireLocalFS refuses paths on network mounts, where SQLite locking is
// unreliable and concurrent appends can corrupt the file. Platforms without
// detection pass.
func requireLocalFS(path string, detect fsDetector) error {
	dir, err := existingAncestor(path)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", path, err)
	}

	fsType, err := detect(dir)
	if errors.Is(err, errDetectUnsupported) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("detect filesystem for %q: %w", dir, err)
	}

	if _, remote := remoteFSTypes[strings.ToLower(strings.TrimSpace(fsType))]; remote {
		return fmt.Errorf("%w: %q is on %s; point sink.sqlite.path or quarantine.path at local disk",
			ErrNetworkFilesystem, path, fsType)
	}
	return nil
}

func existingAncestor(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for p := abs; ; {
		_, err := os.Stat(p)
		switch {
		case err == nil:
			return p, nil
		case !errors.Is(err, os.ErrNotExist):
			return "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", fmt.Errorf("no existing parent for %q", abs)
		}
		p = parent
	}
}

var errDetectUnsupported = errors.New("filesystem detection unsupported")
