package domain

// PathNode is an entity on a shortest path, tagged with its kind
// (user, transaction, or other for derived shared-attribute nodes).
type PathNode struct {
	ID   string
	Kind string
	Name string
}

// PathEdge is a traversed relationship on a shortest path.
type PathEdge struct {
	Start string
	End   string
	Type  EdgeType
}

// PathResult reports the minimum-hop path between two users, if one exists
// within the traversal bound. Hops counts edges, not entities.
type PathResult struct {
	Found        bool
	SourceUserID string
	TargetUserID string
	Hops         int
	Nodes        []PathNode
	Edges        []PathEdge
}
