package merge

import (
	"fmt"

	"github.com/davidvella/xsort/loser"
	"github.com/davidvella/xsort/order"
	"github.com/davidvella/xsort/priority"
	"github.com/davidvella/xsort/sequence"
	"github.com/google/btree"
)

// Frontier holds the sequences that still have lines, ordered by their head
// line. Head ties are broken by the sequence's position in the slice the
// frontier was built from.
type Frontier interface {
	// Len returns the number of sequences in the frontier.
	Len() int
	// Min returns the sequence with the smallest head, or nil when empty.
	Min() *sequence.Sequence
	// Fix restores the order after the head of Min advanced.
	Fix()
	// Retire removes Min from the frontier.
	Retire()
}

// NewFrontierFunc builds a Frontier over sequences that are not exhausted.
type NewFrontierFunc func(seqs []*sequence.Sequence, cmp order.Func) Frontier

// Names of the frontiers accepted by FrontierByName.
const (
	FrontierHeap    = "heap"
	FrontierLoser   = "loser"
	FrontierOrdered = "btree"
)

// FrontierByName returns the frontier constructor registered under name.
func FrontierByName(name string) (NewFrontierFunc, error) {
	switch name {
	case FrontierHeap:
		return NewHeapFrontier, nil
	case FrontierLoser:
		return NewLoserFrontier, nil
	case FrontierOrdered:
		return NewOrderedFrontier, nil
	default:
		return nil, fmt.Errorf("merge: unknown frontier %q", name)
	}
}

type cursor struct {
	ord int
	seq *sequence.Sequence
}

type heapFrontier struct {
	q *priority.Queue[int, cursor]
}

// NewHeapFrontier keeps the sequences in a binary heap.
func NewHeapFrontier(seqs []*sequence.Sequence, cmp order.Func) Frontier {
	q := priority.NewQueue[int, cursor](func(a, b cursor) bool {
		if c := cmp(a.seq.Peek(), b.seq.Peek()); c != 0 {
			return c < 0
		}
		return a.ord < b.ord
	})
	for i, s := range seqs {
		q.Set(i, cursor{ord: i, seq: s})
	}
	return &heapFrontier{q: q}
}

func (h *heapFrontier) Len() int {
	return h.q.Len()
}

func (h *heapFrontier) Min() *sequence.Sequence {
	_, c, ok := h.q.Peek()
	if !ok {
		return nil
	}
	return c.seq
}

func (h *heapFrontier) Fix() {
	if k, _, ok := h.q.Peek(); ok {
		h.q.Fix(k)
	}
}

func (h *heapFrontier) Retire() {
	h.q.Pop()
}

type loserFrontier struct {
	t *loser.Tree[*sequence.Sequence]
}

// NewLoserFrontier keeps the sequences in a tournament tree.
func NewLoserFrontier(seqs []*sequence.Sequence, cmp order.Func) Frontier {
	return &loserFrontier{
		t: loser.New(seqs, func(a, b *sequence.Sequence) bool {
			return cmp(a.Peek(), b.Peek()) < 0
		}),
	}
}

func (l *loserFrontier) Len() int {
	return l.t.Len()
}

func (l *loserFrontier) Min() *sequence.Sequence {
	_, s, ok := l.t.Winner()
	if !ok {
		return nil
	}
	return s
}

func (l *loserFrontier) Fix() {
	if _, s, ok := l.t.Winner(); ok {
		l.t.Replace(s)
	}
}

func (l *loserFrontier) Retire() {
	l.t.Retire()
}

// orderedItem keeps a copy of the head so the tree never sees a key change.
type orderedItem struct {
	head string
	cursor
}

type orderedFrontier struct {
	t *btree.BTreeG[orderedItem]
}

const btreeDegree = 8

// NewOrderedFrontier keeps the sequences in a B-tree ordered by head.
func NewOrderedFrontier(seqs []*sequence.Sequence, cmp order.Func) Frontier {
	t := btree.NewG[orderedItem](btreeDegree, func(a, b orderedItem) bool {
		if c := cmp(a.head, b.head); c != 0 {
			return c < 0
		}
		return a.ord < b.ord
	})
	for i, s := range seqs {
		t.ReplaceOrInsert(orderedItem{head: s.Peek(), cursor: cursor{ord: i, seq: s}})
	}
	return &orderedFrontier{t: t}
}

func (o *orderedFrontier) Len() int {
	return o.t.Len()
}

func (o *orderedFrontier) Min() *sequence.Sequence {
	it, ok := o.t.Min()
	if !ok {
		return nil
	}
	return it.seq
}

func (o *orderedFrontier) Fix() {
	it, ok := o.t.DeleteMin()
	if !ok {
		return
	}
	it.head = it.seq.Peek()
	o.t.ReplaceOrInsert(it)
}

func (o *orderedFrontier) Retire() {
	o.t.DeleteMin()
}
