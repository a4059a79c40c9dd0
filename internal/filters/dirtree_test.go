// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flattenedPaths(root *DirNode) []string {
	nodes := Flatten(root)
	paths := make([]string, 0, len(nodes))
	for _, n := range nodes {
		paths = append(paths, n.Path)
	}
	return paths
}

func TestBuildTreeMergesSharedPrefixes(t *testing.T) {
	root := BuildTree([]string{"/a/b", "/a/c", "/a"}, nil)

	children := root.Children()
	require.Len(t, children, 1)

	a := children[0]
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "/a/", a.Path)
	assert.Equal(t, 0, a.Level)
	assert.Equal(t, 3, a.Count)

	require.Len(t, a.Children(), 2)
	b, c := a.Children()[0], a.Children()[1]
	assert.Equal(t, "/a/b/", b.Path)
	assert.Equal(t, 1, b.Count)
	assert.Equal(t, 1, b.Level)
	assert.Equal(t, "/a/c/", c.Path)
	assert.Equal(t, 1, c.Count)
}

func TestBuildTreeRootCountEqualsTorrentCount(t *testing.T) {
	paths := []string{
		"/data/films/hd",
		"/data/films/hd",
		"/data/films",
		"/data/music",
		"/backup",
	}
	root := BuildTree(paths, nil)

	total := 0
	for _, child := range root.Children() {
		total += child.Count
	}
	assert.Equal(t, len(paths), total)
}

func TestBuildTreeCumulativeCounts(t *testing.T) {
	paths := []string{
		"/data/films/hd",
		"/data/films/sd",
		"/data/films",
		"/data/music",
	}
	root := BuildTree(paths, map[string]bool{"/data/": true, "/data/films/": true})

	byPath := make(map[string]*DirNode)
	for _, n := range Flatten(root) {
		byPath[n.Path] = n
	}

	assert.Equal(t, 4, byPath["/data/"].Count)
	assert.Equal(t, 3, byPath["/data/films/"].Count)
	assert.Equal(t, 1, byPath["/data/films/hd/"].Count)
	assert.Equal(t, 1, byPath["/data/films/sd/"].Count)
	assert.Equal(t, 1, byPath["/data/music/"].Count)
}

func TestBuildTreeIsOrderIndependent(t *testing.T) {
	forward := BuildTree([]string{"/a/b", "/c", "/a"}, nil)
	backward := BuildTree([]string{"/a", "/c", "/a/b"}, nil)

	assert.Equal(t, flattenedPaths(forward), flattenedPaths(backward))
}

func TestBuildTreeSkipsEmptySegments(t *testing.T) {
	root := BuildTree([]string{"//data//films", "data/films"}, nil)

	byPath := make(map[string]*DirNode)
	for _, n := range Flatten(root) {
		byPath[n.Path] = n
	}

	// Both spellings collapse onto the same nodes.
	require.Contains(t, byPath, "/data/")
	assert.Equal(t, 2, byPath["/data/"].Count)
}

func TestBuildTreeEmptyInput(t *testing.T) {
	root := BuildTree(nil, nil)

	assert.Equal(t, -1, root.Level)
	assert.Empty(t, root.Children())
	assert.Empty(t, Flatten(root))
}

func TestFlattenHonorsExpansion(t *testing.T) {
	paths := []string{"/a/b/c", "/a/d", "/e"}

	collapsed := BuildTree(paths, nil)
	assert.Equal(t, []string{"/a/", "/e/"}, flattenedPaths(collapsed))

	expanded := BuildTree(paths, map[string]bool{"/a/": true})
	assert.Equal(t, []string{"/a/", "/a/b/", "/a/d/", "/e/"}, flattenedPaths(expanded))

	deep := BuildTree(paths, map[string]bool{"/a/": true, "/a/b/": true})
	assert.Equal(t, []string{"/a/", "/a/b/", "/a/b/c/", "/a/d/", "/e/"}, flattenedPaths(deep))
}

func TestFlattenCollapseIsStickyDownward(t *testing.T) {
	// /a is collapsed, /a/b remains flagged expanded: the whole /a subtree
	// stays hidden until /a is re-expanded.
	paths := []string{"/a/b/c"}

	hidden := BuildTree(paths, map[string]bool{"/a/b/": true})
	assert.Equal(t, []string{"/a/"}, flattenedPaths(hidden))

	restored := BuildTree(paths, map[string]bool{"/a/": true, "/a/b/": true})
	assert.Equal(t, []string{"/a/", "/a/b/", "/a/b/c/"}, flattenedPaths(restored))
}

func TestFlattenIsIdempotent(t *testing.T) {
	root := BuildTree([]string{"/a/b", "/a/c", "/d"}, map[string]bool{"/a/": true})

	first := flattenedPaths(root)
	second := flattenedPaths(root)
	assert.Equal(t, first, second)

	// Flatten never mutates expansion flags.
	for _, n := range Flatten(root) {
		if n.Path == "/a/" {
			assert.True(t, n.Expanded)
		}
	}
}

func TestCollapseAndReExpandRestoresOrder(t *testing.T) {
	paths := []string{"/a/m", "/a/b", "/a/z", "/other"}
	expanded := ExpandedPaths{"/a/"}

	before := flattenedPaths(BuildTree(paths, expanded.Set()))

	collapsed := expanded.Remove("/a/")
	assert.Equal(t, []string{"/a/", "/other/"}, flattenedPaths(BuildTree(paths, collapsed.Set())))

	after := flattenedPaths(BuildTree(paths, collapsed.Add("/a/").Set()))
	assert.Equal(t, before, after)
}

func TestExpandedPathsValueSemantics(t *testing.T) {
	base := ExpandedPaths{"/a/"}

	added := base.Add("/b/")
	assert.Equal(t, ExpandedPaths{"/a/"}, base)
	assert.Equal(t, ExpandedPaths{"/a/", "/b/"}, added)

	// Adding an existing path is a no-op.
	assert.Equal(t, added, added.Add("/b/"))

	removed := added.Remove("/a/")
	assert.Equal(t, ExpandedPaths{"/b/"}, removed)
	assert.Equal(t, ExpandedPaths{"/a/", "/b/"}, added)

	// Removing an absent path is a no-op.
	assert.Equal(t, removed, removed.Remove("/missing/"))
}
