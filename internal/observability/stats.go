package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	PagesFetched      uint64            `json:"pages_fetched"`
	APICalls          uint64            `json:"api_calls"`
	EntriesFound      uint64            `json:"entries_found"`
	EntryMisses       uint64            `json:"entry_misses"`
	ErrorsTotal       uint64            `json:"errors_total"`
	FetchSecondsAvg   float64           `json:"fetch_seconds_avg"`
	ErrorsByType      map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	pagesFetched uint64
	apiCalls     uint64
	entriesFound uint64
	entryMisses  uint64
	errorsTotal  uint64

	fetchCount uint64
	fetchNanos uint64

	statsMu           sync.Mutex
	errorsByType      = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
)

func IncPagesFetched() {
	atomic.AddUint64(&pagesFetched, 1)
}

func IncAPICall() {
	atomic.AddUint64(&apiCalls, 1)
}

func IncEntryFound() {
	atomic.AddUint64(&entriesFound, 1)
}

func IncEntryMiss() {
	atomic.AddUint64(&entryMisses, 1)
}

func ObserveFetchDuration(seconds float64) {
	if seconds <= 0 {
		return
	}
	atomic.AddUint64(&fetchCount, 1)
	atomic.AddUint64(&fetchNanos, uint64(seconds*1e9))
}

func IncError(errType, component string) {
	if errType == "" {
		errType = ErrorUnknown
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	count := atomic.LoadUint64(&fetchCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&fetchNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		PagesFetched:      atomic.LoadUint64(&pagesFetched),
		APICalls:          atomic.LoadUint64(&apiCalls),
		EntriesFound:      atomic.LoadUint64(&entriesFound),
		EntryMisses:       atomic.LoadUint64(&entryMisses),
		ErrorsTotal:       atomic.LoadUint64(&errorsTotal),
		FetchSecondsAvg:   avg,
		ErrorsByType:      errorsTypeCopy,
		ErrorsByComponent: errorsComponentCopy,
	}
}

// Reset zeroes every counter. One run owns the process, so the CLI resets
// before each command.
func Reset() {
	atomic.StoreUint64(&pagesFetched, 0)
	atomic.StoreUint64(&apiCalls, 0)
	atomic.StoreUint64(&entriesFound, 0)
	atomic.StoreUint64(&entryMisses, 0)
	atomic.StoreUint64(&errorsTotal, 0)
	atomic.StoreUint64(&fetchCount, 0)
	atomic.StoreUint64(&fetchNanos, 0)
	statsMu.Lock()
	errorsByType = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
	statsMu.Unlock()
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
