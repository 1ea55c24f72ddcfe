package book

import "sync"

// MemoryAddressBook is an in-memory AddressBook that assigns compact ids in
// registration order, starting at 1 (0 is reserved for "absent").
type MemoryAddressBook struct {
	mu     sync.RWMutex
	nextID uint32
	ids    map[string]uint32
}

// NewMemoryAddressBook creates an empty MemoryAddressBook.
func NewMemoryAddressBook() *MemoryAddressBook {
	return &MemoryAddressBook{
		ids: make(map[string]uint32),
	}
}

// Register assigns a compact id to the address, or returns the existing one.
func (b *MemoryAddressBook) Register(address string) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id, ok := b.ids[address]; ok {
		return id
	}
	b.nextID++
	b.ids[address] = b.nextID
	return b.nextID
}

// Resolve returns the compact id for the address, ErrNotRegistered if the
// address was never registered.
func (b *MemoryAddressBook) Resolve(address string) (uint32, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	id, ok := b.ids[address]
	if !ok {
		return 0, ErrNotRegistered
	}
	return id, nil
}
