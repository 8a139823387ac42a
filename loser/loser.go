// Package loser is a tournament tree adapted from Bryan Boreham's
// https://github.com/bboreham/go-loser.
package loser

// A loser tree is a binary tree laid out such that nodes N and N+1 have parent N/2.
// We store M leaf nodes in positions M...2M-1, and M-1 internal nodes in positions 1..M-1.
// Node 0 is a special node, containing the winner of the contest.
type Tree[E any] struct {
	nodes  []int // Leaf position of the loser at internal nodes, of the winner at node 0.
	values []E
	active []bool
	live   int
	less   func(E, E) bool
}

// New builds a tree whose players start with values. Ties are won by the
// player with the lower index.
func New[E any](values []E, less func(E, E) bool) *Tree[E] {
	m := len(values)
	t := &Tree[E]{
		nodes:  make([]int, 2*m),
		values: make([]E, 2*m),
		active: make([]bool, 2*m),
		live:   m,
		less:   less,
	}
	for i, v := range values {
		t.values[m+i] = v
		t.active[m+i] = true
	}
	if m > 0 {
		t.nodes[0] = t.playGame(1)
	}
	return t
}

// Len returns the number of players still in the contest.
func (t *Tree[E]) Len() int {
	return t.live
}

// Winner returns the index and value of the current winner.
func (t *Tree[E]) Winner() (int, E, bool) {
	if t.live == 0 {
		var zero E
		return -1, zero, false
	}
	pos := t.nodes[0]
	return pos - len(t.nodes)/2, t.values[pos], true
}

// Replace gives the winner a new value, which must not be smaller than its
// old one, and replays its games.
func (t *Tree[E]) Replace(v E) {
	if t.live == 0 {
		return
	}
	pos := t.nodes[0]
	t.values[pos] = v
	t.replayGames(pos)
}

// Retire removes the winner from the contest.
func (t *Tree[E]) Retire() {
	if t.live == 0 {
		return
	}
	pos := t.nodes[0]
	var zero E
	t.values[pos] = zero
	t.active[pos] = false
	t.live--
	t.replayGames(pos)
}

// beats reports whether the player at leaf position a wins against b.
// Retired players lose every game.
func (t *Tree[E]) beats(a, b int) bool {
	switch {
	case !t.active[a]:
		return false
	case !t.active[b]:
		return true
	case t.less(t.values[a], t.values[b]):
		return true
	case t.less(t.values[b], t.values[a]):
		return false
	default:
		return a < b
	}
}

// Find the winner at position pos; if it is a non-leaf node, store the loser.
// pos must be >= 1 and < len(t.nodes).
func (t *Tree[E]) playGame(pos int) int {
	if pos >= len(t.nodes)/2 {
		return pos
	}
	left := t.playGame(pos * 2)
	right := t.playGame(pos*2 + 1)
	winner, loser := left, right
	if t.beats(right, left) {
		winner, loser = right, left
	}
	t.nodes[pos] = loser
	return winner
}

// Starting at pos, which was the winner, re-consider all games up to the root.
func (t *Tree[E]) replayGames(pos int) {
	winner := pos
	for n := parent(pos); n != 0; n = parent(n) {
		if t.beats(t.nodes[n], winner) {
			// Record the old winner as the loser here; the stored loser moves up.
			t.nodes[n], winner = winner, t.nodes[n]
		}
	}
	t.nodes[0] = winner
}

func parent(i int) int { return i >> 1 }
