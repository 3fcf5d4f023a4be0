//go:build linux

package storage

import (
	"fmt"
	"syscall"
)

// statfs f_type magic numbers for the remote filesystems we refuse.
var linuxRemoteMagic = map[uint32]string{
	0x6969:     "nfs",
	0xFF534D42: "cifs",
	0x517B:     "smbfs",
	0xFE534D42: "smb2",
}

func detectFSType(path string) (string, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return "", fmt.Errorf("statfs: %w", err)
	}
	return linuxFSName(uint32(st.Type)), nil
}

// linuxFSName names a statfs f_type. The magic is a 32-bit value, but
// Statfs_t.Type is signed on some architectures, so callers truncate first.
func linuxFSName(fsType uint32) string {
	if name, ok := linuxRemoteMagic[fsType]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", fsType)
}
