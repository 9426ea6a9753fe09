package store

import (
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// parallelScanThreshold is the shard size from which Search splits the
// similarity scan across goroutines.
const parallelScanThreshold = 4096

// Shard is one independently locked partition of the keyspace. Vectors are kept
// in a single contiguous arena indexed by slot so the search scan walks memory
// linearly. The dimension is fixed by the first successful insert and never
// changes afterwards, even when the shard becomes empty again.
type Shard struct {
	number    int
	dimension int // 0 until the first insert
	slots     map[string]int
	ids       []string
	data      []float32 // len(ids)*dimension components
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewShard creates an empty shard. number identifies it in logs and stats.
func NewShard(number int, logger *zap.Logger) *Shard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shard{
		number: number,
		slots:  make(map[string]int),
		logger: logger,
	}
}

// Number returns the shard's position in the router.
func (s *Shard) Number() int {
	return s.number
}

// Insert stores vector under id, overwriting any existing record. The vector is copied.
func (s *Shard) Insert(id string, vector []float32) error {
	if id == "" {
		return invalidArgument("id cannot be empty")
	}
	if err := validateVector("vector", vector); err != nil {
		return err
	}

	s.mu.Lock()
	lockedIn := false
	if s.dimension == 0 {
		s.dimension = len(vector)
		lockedIn = true
	} else if len(vector) != s.dimension {
		expected := s.dimension
		s.mu.Unlock()
		return &DimensionMismatchError{Expected: expected, Actual: len(vector)}
	}
	if slot, ok := s.slots[id]; ok {
		copy(s.data[slot*s.dimension:(slot+1)*s.dimension], vector)
	} else {
		s.slots[id] = len(s.ids)
		s.ids = append(s.ids, id)
		s.data = append(s.data, vector...)
	}
	s.mu.Unlock()

	if lockedIn {
		s.logger.Debug("shard dimension set", zap.Int("shard", s.number), zap.Int("dimension", len(vector)))
	}
	return nil
}

// Get returns a copy of the vector stored under id.
func (s *Shard) Get(id string) ([]float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, false
	}
	vec := make([]float32, s.dimension)
	copy(vec, s.data[slot*s.dimension:(slot+1)*s.dimension])
	return vec, true
}

// Delete removes the record for id and reports whether one existed.
// The last slot is moved into the hole so the arena stays dense.
func (s *Shard) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return false
	}
	d := s.dimension
	last := len(s.ids) - 1
	if slot != last {
		moved := s.ids[last]
		s.ids[slot] = moved
		copy(s.data[slot*d:(slot+1)*d], s.data[last*d:(last+1)*d])
		s.slots[moved] = slot
	}
	s.ids = s.ids[:last]
	s.data = s.data[:last*d]
	delete(s.slots, id)
	return true
}

type scored struct {
	id    string
	score float64
}

// Search returns up to k ids ordered by cosine similarity to query, most
// similar first. A shard that has never held a vector returns an empty result.
func (s *Shard) Search(query []float32, k int) ([]string, error) {
	if k <= 0 {
		return nil, invalidArgument("k must be positive")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dimension == 0 {
		return []string{}, nil
	}
	if len(query) != s.dimension {
		return nil, &DimensionMismatchError{Expected: s.dimension, Actual: len(query)}
	}

	scores := s.scoreAll(query)
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if k > len(scores) {
		k = len(scores)
	}
	result := make([]string, k)
	for i := 0; i < k; i++ {
		result[i] = scores[i].id
	}
	return result, nil
}

// scoreAll must be called with the read lock held; every worker finishes before it returns.
func (s *Shard) scoreAll(query []float32) []scored {
	n, d := len(s.ids), s.dimension
	scores := make([]scored, n)
	scoreRange := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			scores[i] = scored{id: s.ids[i], score: CosineSimilarity(query, s.data[i*d:(i+1)*d])}
		}
	}
	if n < parallelScanThreshold {
		scoreRange(0, n)
		return scores
	}
	workers := runtime.GOMAXPROCS(0)
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			scoreRange(lo, hi)
		}()
	}
	wg.Wait()
	return scores
}

// Len returns the number of records currently stored.
func (s *Shard) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Dimension returns the locked-in dimension, or 0 if the shard was never populated.
func (s *Shard) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}
