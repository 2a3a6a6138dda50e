package storage

import (
	"fmt"
	"sync"

	"github.com/vperfumes/tracker/config"
	"github.com/vperfumes/tracker/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk string
)

// Connect boots the storage manager. Call once at application startup.
func Connect() {
	managerMu.Lock()
	defer managerMu.Unlock()

	defaultDisk = config.StorageDefault()

	// Always boot the local disk.
	disks["local"] = newLocalDisk()

	// Boot the S3 disk only if a bucket is configured.
	if config.StorageS3Bucket() != "" {
		d, err := newS3Disk()
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			disks["s3"] = d
		}
	}
}

// Use returns the named disk ("local" or "s3").
func Use(name string) (Disk, error) {
	managerMu.RLock()
	d, ok := disks[name]
	managerMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// RegisterDisk plugs in a custom Disk implementation (tests use this).
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}

func defaultD() (Disk, error) { return Use(defaultDisk) }

// Put writes content to path on the default disk.
func Put(path string, content []byte) error {
	d, err := defaultD()
	if err != nil {
		return err
	}
	return d.Put(path, content)
}

// Get returns file content from the default disk.
func Get(path string) ([]byte, error) {
	d, err := defaultD()
	if err != nil {
		return nil, err
	}
	return d.Get(path)
}

// URL returns the artifact location on the default disk.
func URL(path string) string {
	d, err := defaultD()
	if err != nil {
		return ""
	}
	return d.URL(path)
}
