// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package filters

import (
	"slices"
	"strings"
)

// DirNode is one directory in the download-location tree. The root node is
// synthetic: level -1, empty name and path, never rendered. Count is
// cumulative over the subtree: the number of torrents whose download
// directory is this node or any descendant.
type DirNode struct {
	Name     string `json:"name"`
	Path     string `json:"path"` // trailing-slash normalized, e.g. "/data/films/"
	Level    int    `json:"level"`
	Count    int    `json:"count"`
	Expanded bool   `json:"expanded"`

	children map[string]*DirNode
	order    []string // child names in insertion order
}

// Children returns the direct children in insertion order.
func (n *DirNode) Children() []*DirNode {
	out := make([]*DirNode, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.children[name])
	}
	return out
}

// HasChildren reports whether the node has any subdirectories.
func (n *DirNode) HasChildren() bool {
	return len(n.children) > 0
}

func (n *DirNode) child(name string, expanded map[string]bool) *DirNode {
	if n.children == nil {
		n.children = make(map[string]*DirNode)
	}
	c, ok := n.children[name]
	if !ok {
		path := n.Path + name + "/"
		if n.Path == "" {
			path = "/" + name + "/"
		}
		c = &DirNode{
			Name:     name,
			Path:     path,
			Level:    n.Level + 1,
			Expanded: expanded[path],
		}
		n.children[name] = c
		n.order = append(n.order, name)
	}
	return c
}

// BuildTree constructs the directory tree from the torrents' download
// directories, merging shared prefixes. Every ancestor of a torrent's
// directory has its count incremented exactly once per torrent, so a node's
// count covers its whole subtree. Expansion state is re-applied from the
// supplied set; it is the only state that survives a rebuild.
//
// Paths are sorted before insertion so child order is deterministic across
// rebuilds regardless of collection order. Empty segments are skipped, which
// makes malformed paths (doubled slashes, missing leading slash) degrade to
// whatever valid segments remain instead of aborting.
func BuildTree(paths []string, expanded map[string]bool) *DirNode {
	root := &DirNode{Level: -1}

	sorted := make([]string, len(paths))
	copy(sorted, paths)
	slices.Sort(sorted)

	for _, p := range sorted {
		node := root
		for _, segment := range strings.Split(p, "/") {
			if segment == "" {
				continue
			}
			node = node.child(segment, expanded)
			node.Count++
		}
	}
	return root
}

// Flatten walks the tree depth-first and returns the renderable nodes in
// order, excluding the root. Children of a collapsed node are skipped
// entirely; their own expanded flags are preserved untouched so re-expanding
// the parent restores the previous shape.
func Flatten(root *DirNode) []*DirNode {
	var out []*DirNode
	var walk func(n *DirNode)
	walk = func(n *DirNode) {
		for _, c := range n.Children() {
			out = append(out, c)
			if c.Expanded {
				walk(c)
			}
		}
	}
	walk(root)
	return out
}

// ExpandedPaths is the persisted list of expanded directory paths. Like
// ActiveSet it is a value: Add and Remove return the updated list, so the
// caller decides when a new snapshot becomes visible.
type ExpandedPaths []string

// Add returns the list with the path included. Adding a path twice is a
// no-op.
func (e ExpandedPaths) Add(path string) ExpandedPaths {
	if slices.Contains(e, path) {
		return e
	}
	out := make(ExpandedPaths, len(e), len(e)+1)
	copy(out, e)
	return append(out, path)
}

// Remove returns the list without the path.
func (e ExpandedPaths) Remove(path string) ExpandedPaths {
	out := make(ExpandedPaths, 0, len(e))
	for _, p := range e {
		if p != path {
			out = append(out, p)
		}
	}
	return out
}

// Set returns the list as a membership set for tree construction.
func (e ExpandedPaths) Set() map[string]bool {
	set := make(map[string]bool, len(e))
	for _, p := range e {
		set[p] = true
	}
	return set
}
