package procedure

import (
	"sort"
	"strings"
	"sync"

	"github.com/Konsultn-Engineering/namedb/param"
)

// Entry is one discovered procedure. SpecificName tells overloads sharing a Key apart.
type Entry struct {
	Key          Key
	SpecificName string
	Params       *param.Model
}

func (e Entry) id() string {
	if e.SpecificName == "" {
		return e.Key.id()
	}
	return e.Key.id() + "/" + strings.ToLower(e.SpecificName)
}

// Cache maps fully-qualified procedure keys to their parameter metadata. It is safe for
// concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Store adds a discovery result in one step. Stored entries with a key present in batch
// are replaced, overloads included, so a refresh drops routines that no longer exist.
func (c *Cache) Store(batch []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := make(map[string]bool, len(batch))
	for _, e := range batch {
		fresh[e.Key.id()] = true
	}
	for id, e := range c.entries {
		if fresh[e.Key.id()] {
			delete(c.entries, id)
		}
	}
	for _, e := range batch {
		c.entries[e.id()] = Entry{Key: e.Key, SpecificName: e.SpecificName, Params: e.Params.Copy()}
	}
}

// Lookup returns a copy of the parameters of the single stored procedure matched by
// search. Zero or several matches yield a *LookupError.
func (c *Cache) Lookup(search Key) (*param.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var found []Entry
	for _, e := range c.entries {
		if search.Matches(e.Key) {
			found = append(found, e)
		}
	}

	switch len(found) {
	case 0:
		return nil, &LookupError{Key: search}
	case 1:
		return found[0].Params.Copy(), nil
	}
	sort.Slice(found, func(i, j int) bool {
		if cmp := found[i].Key.Compare(found[j].Key); cmp != 0 {
			return cmp < 0
		}
		return found[i].SpecificName < found[j].SpecificName
	})
	lerr := &LookupError{Key: search, Matches: make([]Key, len(found)), SpecificNames: make([]string, len(found))}
	for i, e := range found {
		lerr.Matches[i] = e.Key
		lerr.SpecificNames[i] = e.SpecificName
	}
	return nil, lerr
}

// Keys returns the stored keys in order.
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]Key, 0, len(c.entries))
	for _, e := range c.entries {
		keys = append(keys, e.Key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })
	return keys
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}
