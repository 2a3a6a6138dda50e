// Package seeders fills a development database with demo data.
//
// Seeders register themselves from init() and run in registration order:
//
//	vperfumes devserver --demo
package seeders

import (
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/vperfumes/tracker/pkg/logger"
)

// Func is one seed step.
type Func func(db *gorm.DB) error

type entry struct {
	name string
	fn   Func
}

var (
	mu      sync.Mutex
	entries []entry
)

// Register adds a seeder. Call from init().
func Register(name string, fn Func) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, entry{name: name, fn: fn})
}

// RunAll executes every registered seeder, stopping on the first error.
func RunAll(db *gorm.DB) error {
	mu.Lock()
	current := make([]entry, len(entries))
	copy(current, entries)
	mu.Unlock()

	for _, e := range current {
		if err := e.fn(db); err != nil {
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		logger.Info("seed: done", "seeder", e.name)
	}
	return nil
}
