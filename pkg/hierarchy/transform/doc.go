// Package transform computes derived views of a component hierarchy.
//
// [Propagate] grows every record's children set to the transitive closure of
// containment, in place. Direct containment is left as built, so indexes that
// describe where a component is placed can still be computed afterwards.
//
// Merging components by name can create cycles (A contains B, B contains A).
// Propagation terminates on them and leaves each member listing itself.
// [FindCycles] and [BackEdges] report such cycles without changing the
// hierarchy; callers decide whether to log, count, or ignore them.
package transform
