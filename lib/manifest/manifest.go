// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest models the contents tree of a depot package
// instance: a Root node whose interior nodes group named children and
// whose leaves (files and tables) reference the content objects that
// hold the actual bytes.
//
// A manifest never contains data, only structure and object digests.
// The store persists manifests as deterministic CBOR; the digest of
// that encoding is the instance hash, so one logical tree has exactly
// one identity.
package manifest

import (
	"fmt"

	"github.com/bureau-foundation/depot/lib/codec"
	"github.com/bureau-foundation/depot/lib/digest"
	"github.com/bureau-foundation/depot/lib/naming"
)

// Kind discriminates manifest node types. The values are stored in
// manifest files; changing them breaks every existing instance.
type Kind string

const (
	// KindRoot is the unique top node of a manifest.
	KindRoot Kind = "root"

	// KindGroup is an interior grouping node (a directory).
	KindGroup Kind = "group"

	// KindFile is a leaf referencing the object fragments of one file,
	// in order.
	KindFile Kind = "file"

	// KindTable is a leaf referencing the serialized fragments of one
	// tabular dataset, in order.
	KindTable Kind = "table"
)

// Node is one node of a contents tree. Interior nodes (root, group)
// carry Children; leaves (file, table) carry Objects. Meta holds
// caller-defined metadata that the store itself never interprets.
type Node struct {
	Kind     Kind             `cbor:"kind"`
	Children map[string]*Node `cbor:"children,omitempty"`
	Objects  []digest.Digest  `cbor:"objects,omitempty"`
	Meta     map[string]any   `cbor:"meta,omitempty"`
}

// NewRoot returns an empty root node. An empty root is a valid
// manifest: it is what a freshly created package contains.
func NewRoot() *Node {
	return &Node{Kind: KindRoot, Children: map[string]*Node{}}
}

// NewGroup returns an empty interior grouping node.
func NewGroup() *Node {
	return &Node{Kind: KindGroup, Children: map[string]*Node{}}
}

// NewFile returns a file leaf referencing the given object fragments.
func NewFile(objects ...digest.Digest) *Node {
	return &Node{Kind: KindFile, Objects: objects}
}

// NewTable returns a table leaf referencing the given object fragments.
func NewTable(objects ...digest.Digest) *Node {
	return &Node{Kind: KindTable, Objects: objects}
}

// IsLeaf reports whether the node is a content-bearing leaf.
func (n *Node) IsLeaf() bool {
	return n.Kind == KindFile || n.Kind == KindTable
}

// Add attaches child under the given name. The receiver must be an
// interior node and the name must be a valid path element.
func (n *Node) Add(name string, child *Node) error {
	if n.IsLeaf() {
		return fmt.Errorf("cannot add child %q to a %s node", name, n.Kind)
	}
	if err := naming.Validate("path element", name); err != nil {
		return err
	}
	if n.Children == nil {
		n.Children = map[string]*Node{}
	}
	n.Children[name] = child
	return nil
}

// Validate checks the structural invariants of a manifest tree: the
// top node is a root and the only root, interior nodes carry no
// objects, leaves carry no children and at least one object fragment,
// and every child name is a valid path element.
func Validate(root *Node) error {
	if root == nil {
		return fmt.Errorf("manifest root is nil")
	}
	if root.Kind != KindRoot {
		return fmt.Errorf("manifest top node is %q, want %q", root.Kind, KindRoot)
	}
	return validateNode(root, "")
}

func validateNode(n *Node, path string) error {
	switch n.Kind {
	case KindRoot:
		if path != "" {
			return fmt.Errorf("node %q: root kind below the top of the tree", path)
		}
		fallthrough
	case KindGroup:
		if len(n.Objects) > 0 {
			return fmt.Errorf("node %q: %s node references objects", path, n.Kind)
		}
		for name, child := range n.Children {
			if err := naming.Validate("path element", name); err != nil {
				return fmt.Errorf("node %q: %w", path, err)
			}
			if child == nil {
				return fmt.Errorf("node %q: child %q is nil", path, name)
			}
			childPath := name
			if path != "" {
				childPath = path + "/" + name
			}
			if err := validateNode(child, childPath); err != nil {
				return err
			}
		}
		return nil

	case KindFile, KindTable:
		if len(n.Children) > 0 {
			return fmt.Errorf("node %q: %s node has children", path, n.Kind)
		}
		if len(n.Objects) == 0 {
			return fmt.Errorf("node %q: %s node references no objects", path, n.Kind)
		}
		return nil

	default:
		return fmt.Errorf("node %q: unknown kind %q", path, n.Kind)
	}
}

// ObjectDigests returns the set of object digests transitively
// referenced by the tree rooted at n. This is the reachability
// enumeration that package removal and prune are built on.
func ObjectDigests(n *Node) map[digest.Digest]struct{} {
	objects := make(map[digest.Digest]struct{})
	collectObjects(n, objects)
	return objects
}

func collectObjects(n *Node, objects map[digest.Digest]struct{}) {
	if n == nil {
		return
	}
	for _, d := range n.Objects {
		objects[d] = struct{}{}
	}
	for _, child := range n.Children {
		collectObjects(child, objects)
	}
}

// Encode validates the tree and returns its canonical CBOR encoding.
// Identical trees always encode to identical bytes; the instance hash
// is defined over this encoding.
func Encode(root *Node) ([]byte, error) {
	if err := Validate(root); err != nil {
		return nil, err
	}
	data, err := codec.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return data, nil
}

// Decode parses and validates a manifest from its encoded form.
func Decode(data []byte) (*Node, error) {
	var root Node
	if err := codec.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if err := Validate(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

// InstanceDigest returns the manifest-domain digest of the tree's
// canonical encoding: the instance hash under which the store files
// this snapshot.
func InstanceDigest(root *Node) (digest.Digest, error) {
	data, err := Encode(root)
	if err != nil {
		return digest.Digest{}, err
	}
	return digest.Manifest(data), nil
}
