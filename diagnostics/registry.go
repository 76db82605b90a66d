package diagnostics

import (
	"sort"
	"sync"
)

var (
	_collectorLock sync.RWMutex
	_collectorMap  = make(map[string]any)
)

// Provide makes collector reachable under path. Bridges that have already
// negotiated are not affected. A nil collector removes the path.
func Provide(path string, collector any) {
	_collectorLock.Lock()
	defer _collectorLock.Unlock()
	if collector == nil {
		delete(_collectorMap, path)
		return
	}
	_collectorMap[path] = collector
}

// Withdraw removes the collector under path.
func Withdraw(path string) {
	Provide(path, nil)
}

// Provided lists the registered paths in order.
func Provided() []string {
	_collectorLock.RLock()
	defer _collectorLock.RUnlock()
	paths := make([]string, 0, len(_collectorMap))
	for p := range _collectorMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func lookupCollector(path string) (any, bool) {
	_collectorLock.RLock()
	defer _collectorLock.RUnlock()
	c, ok := _collectorMap[path]
	return c, ok
}
