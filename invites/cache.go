package invites

import (
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Cache mirrors the invites of every observed community.
// Each community maps to an immutable code -> Snapshot map; writers build a new map
// and swap it in, so readers never see a partially updated state.
type Cache struct {
	communities cmap.ConcurrentMap[string, map[string]Snapshot]
}

func NewCache() *Cache {
	return &Cache{communities: cmap.New[map[string]Snapshot]()}
}

// Get returns a copy of the last known state for the community (empty if never observed)
func (c *Cache) Get(communityID string) map[string]Snapshot {
	current, _ := c.communities.Get(communityID)
	result := make(map[string]Snapshot, len(current))
	for code, s := range current {
		result[code] = s
	}
	return result
}

// Replace swaps the stored state for a freshly fetched list.
// Codes missing from the list (expired, deleted, used up) are dropped.
func (c *Cache) Replace(communityID string, list []Snapshot) {
	c.communities.Set(communityID, toMapping(list))
}

// ReplaceSince is Replace for a list fetched at fetchedAt. Cached invites missing from the list
// but captured after fetchedAt (created while the fetch was in flight) are kept.
func (c *Cache) ReplaceSince(communityID string, list []Snapshot, fetchedAt time.Time) {
	fresh := toMapping(list)
	c.communities.Upsert(communityID, fresh, func(exist bool, valueInMap, newValue map[string]Snapshot) map[string]Snapshot {
		if !exist {
			return newValue
		}
		for code, s := range valueInMap {
			if _, ok := newValue[code]; !ok && s.CapturedAt.After(fetchedAt) {
				newValue[code] = s
			}
		}
		return newValue
	})
}

// ApplyCreated adds a newly created invite. Existing codes are left untouched.
func (c *Cache) ApplyCreated(communityID string, s Snapshot) {
	c.communities.Upsert(communityID, nil, func(exist bool, valueInMap, _ map[string]Snapshot) map[string]Snapshot {
		if !exist {
			return map[string]Snapshot{s.Code: s}
		}
		if _, ok := valueInMap[s.Code]; ok {
			return valueInMap
		}
		updated := make(map[string]Snapshot, len(valueInMap)+1)
		for code, old := range valueInMap {
			updated[code] = old
		}
		updated[s.Code] = s
		return updated
	})
}

// Communities lists the IDs of all communities with a cached state
func (c *Cache) Communities() []string {
	return c.communities.Keys()
}
