// Package hierarchy builds the component dependency graph of a design subtree.
//
// # Overview
//
// Design files describe a tree of nodes, but the same logical component can
// appear many times under different node ids: once where it is declared, and
// once for every instance placed elsewhere. This package collapses those
// appearances into one [Record] per component and records which components
// contain which others. The result is a [Hierarchy]: an insertion-ordered map
// from canonical id to record.
//
// # Identity
//
// Components are identified by name. Names are compared through
// [normalize.Normalize], so accents, case and locale letters do not split a
// component in two. The canonical id of a name is the id of the first
// COMPONENT or COMPONENT_SET node declaring it; names that were never declared
// in the analyzed subtree keep the id of the node that used them.
//
// # Building
//
// [Build] runs two passes over the subtree. The declaration pass fills a
// [Resolver]; the relationship pass visits each node once and, for every
// COMPONENT, COMPONENT_SET and INSTANCE, links its record to the records of
// the components it contains:
//
//	h, err := hierarchy.Build(canvas)
//	if err != nil {
//	    return err
//	}
//	for _, r := range h.Records() {
//	    fmt.Println(r.Name, r.Direct())
//	}
//
// Declarations are recorded under their own names. Usages with variant names
// ("State=Hover") are qualified with their parent's name ("Button / State=Hover")
// before resolution; see [EffectiveName].
//
// Only immediate component-bearing children count as contained. Set
// [Options].LookThrough to also reach components nested in frames and groups.
//
// Merging by name can close cycles even though the design tree is acyclic.
// Cycles are accepted here; the transform subpackage propagates containment
// to a fixed point and reports them.
//
// # Direct and closure children
//
// Each record keeps its direct children separately from its children set.
// Propagation only grows the children set, so reverse indexes that must
// describe direct containment stay correct after the closure is computed.
//
// [normalize.Normalize]: github.com/matzehuels/componentscope/pkg/normalize.Normalize
package hierarchy
