// Package network models a directed multigraph whose nodes and arcs carry
// named dynamics. A System maps the graph onto one flat state vector: node
// slots first, then arc slots, each of a fixed width equal to the largest
// state count of any registered dynamic of that kind.
//
// Structural edits invalidate the dense node or arc index. Indices are
// rebuilt lazily by RefreshStateIDs, which simulators call at most once per
// run.
package network
