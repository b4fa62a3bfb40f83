package trie

/*
Arena-based Trie Implementation

This implementation uses an arena-based memory allocation strategy to improve memory efficiency
and reduce garbage collection overhead in the trie data structure. Here's how it works:

1. Memory Allocation Efficiency:
	- This arena implementation pre-allocates a contiguous slice of nodes and manages them
	as a pool, dramatically reducing the number of separate allocations.
	- Nodes are stored in a single slice and referenced by index rather than pointers,
	which reduces memory overhead and improves locality.

2. Benefits:
	- Reduced GC Pressure: Fewer allocations mean less work for the garbage collector.
	- Improved Memory Locality: Related data is stored contiguously in memory, improving
		CPU cache utilization and reducing cache misses during traversal.
	- Reduced Memory Fragmentation: A single large allocation instead of many small ones
		minimizes memory fragmentation.
	- Smaller Memory Footprint: Using integer indices instead of pointers saves memory,
		especially on 64-bit systems where pointers are 8 bytes.

3. Implementation Details:
	- The Arena struct manages a slice of nodes where each node is referenced by its index.
	- New nodes are appended to the slice, and their index is used for referencing.
	- Child nodes are referenced by their index in the arena rather than by pointer.
*/

// NodeIndex represents the index of a trie node.
type NodeIndex int

// Arena is a memory pool that stores all trie nodes.
type Arena struct {
	// nodes is a slice that stores all trie nodes.
	nodes []arenaNode
}

// arenaNode is the internal representation of a trie node stored in the arena.
type arenaNode struct {
	// children stores child nodes. key is the path segment, value is the index of the child node.
	children map[string]NodeIndex
	// isEnd indicates whether this node is the end of a path.
	isEnd bool
}

// NewArena creates a new arena.
func NewArena() *Arena {
	arena := &Arena{
		nodes: make([]arenaNode, 0, 1024), // Set initial capacity
	}
	// root node (index 0)
	arena.nodes = append(arena.nodes, arenaNode{
		children: make(map[string]NodeIndex),
		isEnd:    false,
	})
	return arena
}

// newNode adds a new node to the arena and returns its index.
func (a *Arena) newNode() NodeIndex {
	idx := NodeIndex(len(a.nodes))
	a.nodes = append(a.nodes, arenaNode{
		children: make(map[string]NodeIndex),
		isEnd:    false,
	})
	return idx
}

// Insert inserts a sequence of strings (representing a path) into the trie.
func (a *Arena) Insert(sequence []string) {
	current := NodeIndex(0) // root node

	for _, part := range sequence {
		node := &a.nodes[current]
		childIdx, exists := node.children[part]

		if !exists {
			childIdx = a.newNode()
			node.children[part] = childIdx
		}

		current = childIdx
	}

	a.nodes[current].isEnd = true
}

// QualifiedNameIndex is a prefix index over dot-segmented names (component
// paths, qualified relation names) built on Arena, with a payload slot per
// terminal node and prefix-completion lookups added on top of the bare
// Insert/isEnd the base arena offers.
type QualifiedNameIndex struct {
	arena    *Arena
	payloads map[NodeIndex]any
}

// NewQualifiedNameIndex returns an empty index.
func NewQualifiedNameIndex() *QualifiedNameIndex {
	return &QualifiedNameIndex{
		arena:    NewArena(),
		payloads: make(map[NodeIndex]any),
	}
}

// Insert records segments in the index. A QualifiedName value (itself
// defined as []string) converts to []string implicitly at the call site.
func (idx *QualifiedNameIndex) Insert(segments []string) {
	idx.arena.Insert(segments)
}

// InsertPayload records segments along with an arbitrary value retrievable
// by Lookup, overwriting any payload already stored at that exact path.
func (idx *QualifiedNameIndex) InsertPayload(segments []string, payload any) {
	node := idx.walkInsert(segments)
	idx.payloads[node] = payload
}

func (idx *QualifiedNameIndex) walkInsert(segments []string) NodeIndex {
	current := NodeIndex(0)
	for _, part := range segments {
		node := &idx.arena.nodes[current]
		childIdx, exists := node.children[part]
		if !exists {
			childIdx = idx.arena.newNode()
			node.children[part] = childIdx
		}
		current = childIdx
	}
	idx.arena.nodes[current].isEnd = true
	return current
}

// Lookup reports whether segments was inserted exactly, and its payload
// if InsertPayload recorded one.
func (idx *QualifiedNameIndex) Lookup(segments []string) (payload any, found bool) {
	node, ok := idx.walk(segments)
	if !ok || !idx.arena.nodes[node].isEnd {
		return nil, false
	}
	return idx.payloads[node], true
}

// StartsWith reports whether any inserted name has segments as a prefix —
// used to detect whether a would-be relation name collides with, or is
// shadowed by, an existing component-qualified name sharing that prefix.
func (idx *QualifiedNameIndex) StartsWith(segments []string) bool {
	_, ok := idx.walk(segments)
	return ok
}

// HasDescendants reports whether any inserted name has segments as a
// strict prefix, i.e. segments names a node with children of its own —
// used to detect whether removing or renaming the relation at segments
// would orphan a component-qualified name nested under it.
func (idx *QualifiedNameIndex) HasDescendants(segments []string) bool {
	node, ok := idx.walk(segments)
	if !ok {
		return false
	}
	return len(idx.arena.nodes[node].children) > 0
}

func (idx *QualifiedNameIndex) walk(segments []string) (NodeIndex, bool) {
	current := NodeIndex(0)
	for _, part := range segments {
		node := idx.arena.nodes[current]
		childIdx, exists := node.children[part]
		if !exists {
			return 0, false
		}
		current = childIdx
	}
	return current, true
}
