package hierarchy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/componentscope/pkg/design"
)

// ErrNilRoot is returned when Build is called without a root node.
var ErrNilRoot = errors.New("root node is nil")

// variantJoiner joins a parent name and a variant name.
const variantJoiner = " / "

// Options configures hierarchy construction.
type Options struct {
	// LookThrough extends containment past frames, groups and other
	// non-component containers to the nearest component-bearing descendants.
	// By default only immediate children count.
	LookThrough bool
}

// Stats summarizes one build.
type Stats struct {
	Nodes        int // nodes visited in the subtree
	Declarations int // distinct declared names
	Usages       int // component-bearing nodes analyzed
	Orphans      int // usages whose name matched no declaration
	Records      int // records in the resulting hierarchy
	Edges        int // direct containment edges
}

// Builder turns a design subtree into a component hierarchy.
// A Builder is single-use: each call to Build starts from a fresh resolver.
type Builder struct {
	opts     Options
	resolver *Resolver
	stats    Stats
}

// NewBuilder returns a builder with the given options.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Build constructs the hierarchy for root using default options.
func Build(root *design.Node) (*Hierarchy, error) {
	return NewBuilder(Options{}).Build(root)
}

// Stats returns statistics for the last Build call.
func (b *Builder) Stats() Stats { return b.stats }

// Resolver returns the resolver populated by the last Build call.
func (b *Builder) Resolver() *Resolver { return b.resolver }

// Build runs the declaration pass and then the relationship pass over root.
//
// The declaration pass records the first COMPONENT or COMPONENT_SET id under
// the node's own normalized name. Variant names are not qualified here, so a
// qualified usage only resolves when a declaration carries the full name.
// The relationship pass visits every node exactly once,
// treating each component-bearing node as the root of its own local analysis:
// it resolves the node to a canonical record and links that record to the
// records of the components it contains. Every referenced id receives a
// record on first reference, so the result never has dangling references.
func (b *Builder) Build(root *design.Node) (*Hierarchy, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	b.resolver = NewResolver()
	b.stats = Stats{}

	b.declare(root)
	h := b.relate(root)

	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("build hierarchy: %w", err)
	}
	b.stats.Records = h.Len()
	b.stats.Edges = h.EdgeCount()
	return h, nil
}

func (b *Builder) declare(root *design.Node) {
	root.Walk(func(n, _ *design.Node) bool {
		b.stats.Nodes++
		if n.IsDeclaration() {
			b.resolver.Declare(n.Name, n.ID)
		}
		return true
	})
	b.stats.Declarations = b.resolver.Len()
}

func (b *Builder) relate(root *design.Node) *Hierarchy {
	h := New()
	root.Walk(func(n, parent *design.Node) bool {
		if !n.IsComponentBearing() {
			return true
		}
		b.stats.Usages++

		name := EffectiveName(n.Name, parentName(parent))
		id, declared := b.resolver.Resolve(name, n.ID)
		if !declared && !n.IsDeclaration() {
			b.stats.Orphans++
		}
		rec, _ := h.Ensure(id, name)

		for _, c := range b.contained(n) {
			childName := EffectiveName(c.node.Name, c.parent.Name)
			childID, _ := b.resolver.Resolve(childName, c.node.ID)
			h.Ensure(childID, childName)
			rec.addDirect(childID)
		}
		return true
	})
	return h
}

type containedNode struct {
	node, parent *design.Node
}

// contained returns the component-bearing nodes n contains, in document order.
func (b *Builder) contained(n *design.Node) []containedNode {
	var out []containedNode
	var visit func(parent *design.Node)
	visit = func(parent *design.Node) {
		for _, child := range parent.Children {
			if child == nil {
				continue
			}
			if child.IsComponentBearing() {
				out = append(out, containedNode{child, parent})
				continue
			}
			if b.opts.LookThrough {
				visit(child)
			}
		}
	}
	visit(n)
	return out
}

func parentName(parent *design.Node) string {
	if parent == nil {
		return ""
	}
	return parent.Name
}

// EffectiveName reconstructs the full name of a variant. Design tools name
// variants inside a component set by their property assignments only
// ("State=Hover"); when name carries a variant assignment and does not already
// start with parentName, the parent is prefixed: "Button / State=Hover".
func EffectiveName(name, parentName string) string {
	if parentName == "" || !strings.Contains(name, design.VariantSeparator) {
		return name
	}
	if strings.HasPrefix(name, parentName) {
		return name
	}
	return parentName + variantJoiner + name
}
