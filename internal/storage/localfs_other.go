//go:build !darwin && !linux

package storage

func detectFSType(string) (string, error) {
	return "", errDetectUnsupported
}
