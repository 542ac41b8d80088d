package mimekit

import (
	"fmt"
	"sort"
	"sync"
)

// CheckerFactory is a function that creates a checker from a config.
type CheckerFactory func(cfg *Config) (Checker, error)

// Checker ranks used by the built-in checker packages. Higher ranks are
// instantiated later and therefore win type-ownership conflicts.
const (
	RankFdo      = 10
	RankMagic    = 20
	RankMimelib  = 30
	RankBasetype = 40
)

type registration struct {
	name    string
	rank    int
	seq     int
	factory CheckerFactory
}

var (
	registryMu    sync.RWMutex
	registrations []registration
	registrySeq   int
)

// RegisterChecker registers a checker factory under a name. Checker packages
// call this from init. The default detector instantiates factories in rank
// order (registration order within a rank), so a checker with a higher rank
// silently takes ownership of any type also claimed by a lower-ranked one.
// Registering the same name twice replaces the earlier factory.
func RegisterChecker(name string, rank int, factory CheckerFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for i := range registrations {
		if registrations[i].name == name {
			registrations[i].rank = rank
			registrations[i].factory = factory
			return
		}
	}
	registrations = append(registrations, registration{
		name:    name,
		rank:    rank,
		seq:     registrySeq,
		factory: factory,
	})
	registrySeq++
}

// RegisteredCheckers returns the names of all registered checker factories
// in instantiation order.
func RegisteredCheckers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	regs := sortedRegistrations()
	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.name
	}
	return names
}

func sortedRegistrations() []registration {
	regs := make([]registration, len(registrations))
	copy(regs, registrations)
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].rank != regs[j].rank {
			return regs[i].rank < regs[j].rank
		}
		return regs[i].seq < regs[j].seq
	})
	return regs
}

// createCheckers instantiates every registered checker in order.
func createCheckers(cfg *Config) ([]Checker, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if len(registrations) == 0 {
		return nil, ErrNoCheckers
	}
	checkers := make([]Checker, 0, len(registrations))
	for _, r := range sortedRegistrations() {
		c, err := r.factory(cfg)
		if err != nil {
			return nil, fmt.Errorf("checker %s: %w", r.name, err)
		}
		checkers = append(checkers, c)
	}
	return checkers, nil
}
