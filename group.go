package routesplit

import (
	"cmp"
	"slices"
	"strconv"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// Default record fields that make up the group key.
const (
	DefaultOriginField = "WAREHOUSEID"
	DefaultRouteField  = "ROADNETROUTE"
)

// GroupKey is the routing key of a record: its origin and route identifiers.
// Distinct (Origin, Route) pairs are always distinct keys.
type GroupKey struct {
	Origin string
	Route  string
}

// String encodes the key with a length tag on the origin so that, for
// example, ("ab", "c") and ("a", "bc") never render the same.
func (k GroupKey) String() string {
	return strconv.Itoa(len(k.Origin)) + ":" + k.Origin + k.Route
}

// Compare orders keys by origin, then route.
func (k GroupKey) Compare(o GroupKey) int {
	if c := cmp.Compare(k.Origin, o.Origin); c != 0 {
		return c
	}
	return cmp.Compare(k.Route, o.Route)
}

// Group is the set of records sharing a key, represented by its size. Groups
// are never split across sessions.
type Group struct {
	Key   GroupKey
	Count int
}

// KeyFunc derives the group key of a record.
type KeyFunc func(Record) GroupKey

// FieldKey returns a KeyFunc reading the origin and route from the named
// fields. A missing field contributes the empty string.
func FieldKey(originField, routeField string) KeyFunc {
	return func(r Record) GroupKey {
		return GroupKey{Origin: r.Value(originField), Route: r.Value(routeField)}
	}
}

// minShard is the smallest number of records worth counting on its own
// goroutine.
const minShard = 1024

// Aggregate counts records per group key and returns the groups sorted by
// descending count, ties broken by ascending key. With workers > 1 the
// records are counted in shards concurrently; the result is read only after
// every shard has finished.
func Aggregate(records []Record, keyFn KeyFunc, workers int) []Group {
	if len(records) == 0 {
		return nil
	}

	workers = max(workers, 1)
	shardSize := max(minShard, (len(records)+workers-1)/workers)
	counts := xsync.NewMap[GroupKey, int]()

	var wg sync.WaitGroup
	for _, shard := range chunk(records, shardSize) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, r := range shard {
				counts.Compute(keyFn(r), func(old int, _ bool) (int, xsync.ComputeOp) {
					return old + 1, xsync.UpdateOp
				})
			}
		}()
	}
	wg.Wait()

	groups := make([]Group, 0, counts.Size())
	counts.Range(func(k GroupKey, n int) bool {
		groups = append(groups, Group{Key: k, Count: n})
		return true
	})
	SortGroups(groups)
	return groups
}

// SortGroups orders groups by descending count, then ascending key.
func SortGroups(groups []Group) {
	slices.SortFunc(groups, func(a, b Group) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return a.Key.Compare(b.Key)
	})
}
