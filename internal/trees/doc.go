// Package trees implements tree registration, scan resolution, and proximity
// search over the record store.
//
// Scan resolution delegates to the scan package's resolver with this
// package's store adapters plugged in: lookups run against the trees table
// and successful resolutions append scan events. Proximity search runs in
// two phases, a coarse bounding-box query answered by the store and an exact
// great-circle filter applied locally.
package trees
