// Package design models the node tree exported by a design tool.
//
// A [File] wraps the [Document] root; the document's direct children are
// canvases (pages). Every [Node] carries an id, a free-form name, a [NodeType]
// tag, and ordered children. Only component-bearing node types matter to the
// analysis; every other type is traversed transparently.
//
// The JSON shape matches the Figma REST API "GET /v1/files/:key" response, so a
// saved API response can be decoded directly into a [File].
package design

import (
	"errors"
	"fmt"
	"strings"
)

// NodeType is the type tag of a design node.
type NodeType string

// Node types the analysis distinguishes. All other tags are passed through.
const (
	TypeDocument     NodeType = "DOCUMENT"
	TypeCanvas       NodeType = "CANVAS"
	TypeFrame        NodeType = "FRAME"
	TypeGroup        NodeType = "GROUP"
	TypeText         NodeType = "TEXT"
	TypeComponent    NodeType = "COMPONENT"
	TypeComponentSet NodeType = "COMPONENT_SET"
	TypeInstance     NodeType = "INSTANCE"
)

// VariantSeparator marks a variant property assignment inside a node name,
// e.g. "State=Hover".
const VariantSeparator = "="

var (
	// ErrNoCanvas is returned when a document contains no canvas nodes.
	ErrNoCanvas = errors.New("no canvas nodes found in document")

	// ErrCanvasOutOfRange is returned when a canvas selection does not match any canvas.
	ErrCanvasOutOfRange = errors.New("canvas selection out of range")

	// ErrNoDocument is returned when a file has no document root.
	ErrNoDocument = errors.New("file has no document")
)

// Node is one element of the design tree. Children are owned by the parent.
type Node struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     NodeType `json:"type"`
	Children []*Node  `json:"children,omitempty"`
}

// IsComponentBearing reports whether the node declares or uses a component.
func (n *Node) IsComponentBearing() bool {
	switch n.Type {
	case TypeComponent, TypeComponentSet, TypeInstance:
		return true
	}
	return false
}

// IsDeclaration reports whether the node declares a component or component set.
func (n *Node) IsDeclaration() bool {
	return n.Type == TypeComponent || n.Type == TypeComponentSet
}

// IsVariantName reports whether the node's name carries a variant assignment.
func (n *Node) IsVariantName() bool {
	return strings.Contains(n.Name, VariantSeparator)
}

// Walk visits n and all of its descendants in depth-first pre-order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(node, parent *Node) bool) {
	type frame struct{ node, parent *Node }
	stack := []frame{{n, nil}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node == nil || !fn(f.node, f.parent) {
			continue
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.node})
		}
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node, *Node) bool {
		count++
		return true
	})
	return count
}

// Document is the root node of a design file.
type Document = Node

// File is a design file as returned by the design tool API.
type File struct {
	Name         string    `json:"name"`
	LastModified string    `json:"lastModified,omitempty"`
	Version      string    `json:"version,omitempty"`
	Document     *Document `json:"document"`
}

// Canvases returns the document's top-level canvas nodes in document order.
func (f *File) Canvases() ([]*Node, error) {
	if f == nil || f.Document == nil {
		return nil, ErrNoDocument
	}
	var canvases []*Node
	for _, child := range f.Document.Children {
		if child != nil && child.Type == TypeCanvas {
			canvases = append(canvases, child)
		}
	}
	if len(canvases) == 0 {
		return nil, ErrNoCanvas
	}
	return canvases, nil
}

// SelectCanvas returns the canvas at the 1-based position n, matching the
// numbering shown to users when canvases are listed.
func (f *File) SelectCanvas(n int) (*Node, error) {
	canvases, err := f.Canvases()
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(canvases) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrCanvasOutOfRange, n, len(canvases))
	}
	return canvases[n-1], nil
}

// CanvasByName returns the first canvas whose name equals name, ignoring case.
func (f *File) CanvasByName(name string) (*Node, error) {
	canvases, err := f.Canvases()
	if err != nil {
		return nil, err
	}
	for _, c := range canvases {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: no canvas named %q", ErrCanvasOutOfRange, name)
}
