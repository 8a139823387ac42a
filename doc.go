// Package xsort sorts line-oriented text that does not fit in memory.
//
// A sort runs in two phases. The input is first cut into runs: buffers
// sized from the available memory, sorted in memory and written to a
// run.Store. The runs are then merged k ways into the output, each run being
// deleted as soon as it has been read to the end.
//
// The order is given by a comparator such as order.CaseInsensitive. Runs
// live in a temporary directory by default (storage/local) and can be kept
// in a scratch Pebble database instead (storage/pebble).
package xsort
