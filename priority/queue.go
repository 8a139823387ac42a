package priority

// entry is one slot of the heap.
type entry[K comparable, V any] struct {
	key   K
	value V
}

// Queue is a min-heap of values addressed by key.
type Queue[K comparable, V any] struct {
	heap  []entry[K, V]
	index map[K]int
	lessF func(a, b V) bool
}

// NewQueue creates a new priority queue ordered by less.
func NewQueue[K comparable, V any](less func(a, b V) bool) *Queue[K, V] {
	return &Queue[K, V]{
		index: make(map[K]int),
		lessF: less,
	}
}

// Len returns the number of values in the queue.
func (pq *Queue[K, V]) Len() int {
	return len(pq.heap)
}

// Get returns the value stored under key.
func (pq *Queue[K, V]) Get(key K) (V, bool) {
	i, ok := pq.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return pq.heap[i].value, true
}

// Set adds a value or replaces the value already stored under key.
func (pq *Queue[K, V]) Set(key K, value V) {
	if i, ok := pq.index[key]; ok {
		pq.heap[i].value = value
		pq.fix(i)
		return
	}
	pq.heap = append(pq.heap, entry[K, V]{key: key, value: value})
	i := len(pq.heap) - 1
	pq.index[key] = i
	pq.up(i)
}

// Fix restores the heap order after the value stored under key changed in
// place, for example when it is a pointer whose priority moved.
func (pq *Queue[K, V]) Fix(key K) {
	if i, ok := pq.index[key]; ok {
		pq.fix(i)
	}
}

// Remove removes key from the queue.
func (pq *Queue[K, V]) Remove(key K) {
	i, ok := pq.index[key]
	if !ok {
		return
	}
	last := len(pq.heap) - 1
	if i != last {
		pq.swap(i, last)
	}
	var zero entry[K, V]
	pq.heap[last] = zero
	pq.heap = pq.heap[:last]
	delete(pq.index, key)
	if i != last {
		pq.fix(i)
	}
}

// Pop removes and returns the value with the highest priority.
func (pq *Queue[K, V]) Pop() (key K, value V, ok bool) {
	key, value, ok = pq.Peek()
	if ok {
		pq.Remove(key)
	}
	return key, value, ok
}

// Peek returns the value with the highest priority without removing it.
func (pq *Queue[K, V]) Peek() (key K, value V, ok bool) {
	if len(pq.heap) == 0 {
		return key, value, false
	}
	e := pq.heap[0]
	return e.key, e.value, true
}

func (pq *Queue[K, V]) less(i, j int) bool {
	return pq.lessF(pq.heap[i].value, pq.heap[j].value)
}

func (pq *Queue[K, V]) swap(i, j int) {
	pq.heap[i], pq.heap[j] = pq.heap[j], pq.heap[i]
	pq.index[pq.heap[i].key] = i
	pq.index[pq.heap[j].key] = j
}

func (pq *Queue[K, V]) fix(i int) {
	if !pq.down(i) {
		pq.up(i)
	}
}

func (pq *Queue[K, V]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !pq.less(i, parent) {
			return
		}
		pq.swap(i, parent)
		i = parent
	}
}

// down sifts slot i towards the leaves and reports whether it moved.
func (pq *Queue[K, V]) down(i int) bool {
	start, n := i, len(pq.heap)
	for {
		smallest := i
		if l := 2*i + 1; l < n && pq.less(l, smallest) {
			smallest = l
		}
		if r := 2*i + 2; r < n && pq.less(r, smallest) {
			smallest = r
		}
		if smallest == i {
			return i != start
		}
		pq.swap(i, smallest)
		i = smallest
	}
}
