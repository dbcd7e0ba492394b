// Package analysis derives reports from a component hierarchy.
//
// [Classify] buckets components by how many distinct components they contain
// once containment has been propagated to its closure. [Index] inverts direct
// containment into an appearance index: for every component, the components
// that place it directly. [Estimate] annotates a component count with a
// linear review-time estimate.
//
// Classify expects a propagated hierarchy; Index only reads direct
// containment, so it gives the same answer before and after propagation.
// Output order always follows the hierarchy's insertion order.
package analysis
