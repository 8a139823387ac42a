// Package loser implements a tournament tree (also known as a loser tree) for
// selecting the smallest of many values that change one at a time. It is the
// classic structure for k-way merging of sorted sequences.
//
// A loser tree is a binary tree where each internal node holds the "loser" of
// the game between its children, and the root holds the overall "winner".
// Advancing the winner only replays the games on its path to the root, so it
// needs about log2(k) comparisons, fewer than a binary heap.
//
// Key features:
//   - Generic over the player value type
//   - Winner, Replace and Retire drive a merge without re-inserting players
//   - Ties are broken by player index, so results are deterministic
//
// Basic usage:
//
//	heads := []string{"apple", "banana", "cherry"}
//	tree := loser.New(heads, func(a, b string) bool { return a < b })
//
//	for tree.Len() > 0 {
//	    i, v, _ := tree.Winner()
//	    fmt.Println(i, v)
//	    if next, ok := nextValue(i); ok {
//	        tree.Replace(next)
//	    } else {
//	        tree.Retire()
//	    }
//	}
//
// Implementation Details:
// The tree is laid out in an array where:
//   - For node N, its children are at positions 2N and 2N+1
//   - Leaf nodes are stored in positions M to 2M-1 (where M is the number of players)
//   - Internal nodes are stored in positions 1 to M-1
//   - Node 0 is special, containing the current winner
//
// Retired players lose every game, so the winner is always a live player
// while any remain.
package loser
