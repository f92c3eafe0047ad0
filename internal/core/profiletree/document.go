package profiletree

import (
	"time"

	"github.com/pkg/errors"
)

// Document is the serializable audit form of a ProfileTree: every node with its statistics,
// plus the parameters and provenance of the build.
type Document struct {
	SnapshotID     string         `json:"snapshotId" msgpack:"snapshotId"`
	BuiltAt        time.Time      `json:"builtAt" msgpack:"builtAt"`
	DatasetVersion string         `json:"datasetVersion,omitempty" msgpack:"datasetVersion,omitempty"`
	ParameterHash  string         `json:"parameterHash" msgpack:"parameterHash"`
	Parameters     ParameterSet   `json:"parameters" msgpack:"parameters"`
	Stats          BuildStats     `json:"stats" msgpack:"stats"`
	Nodes          []NodeDocument `json:"nodes" msgpack:"nodes"`
}

// NodeDocument is one node of a Document. Nodes are listed breadth-first; Parent is the
// position of the parent node in the list, -1 for the root.
type NodeDocument struct {
	Parent         int      `json:"parent" msgpack:"parent"`
	Depth          int      `json:"depth" msgpack:"depth"`
	Path           []string `json:"path" msgpack:"path"`
	Label          Label    `json:"label" msgpack:"label"`
	Count          int64    `json:"count" msgpack:"count"`
	HitCount       int64    `json:"hitCount" msgpack:"hitCount"`
	RejectionCount int64    `json:"rejectionCount" msgpack:"rejectionCount"`
}

// Document exports the tree.
func (pt *ProfileTree) Document() *Document {
	nodes := make([]NodeDocument, len(pt.nodes))
	for i, n := range pt.nodes {
		nodes[i] = NodeDocument{
			Parent:         n.parent,
			Depth:          n.depth,
			Path:           append([]string{}, n.path...),
			Label:          n.label,
			Count:          n.count,
			HitCount:       n.hitCount,
			RejectionCount: n.rejectionCount,
		}
	}
	return &Document{
		SnapshotID:     pt.snapshotID,
		BuiltAt:        pt.builtAt,
		DatasetVersion: pt.datasetVersion,
		ParameterHash:  pt.parameterHash,
		Parameters:     pt.conf.ParameterSet(),
		Stats:          pt.stats,
		Nodes:          nodes,
	}
}

// FromDocument restores a ProfileTree from its audit document. The document is checked for
// structural consistency; every failure wraps ErrInvalidDocument.
func FromDocument(doc *Document) (*ProfileTree, error) {
	if doc == nil {
		return nil, errors.Wrap(ErrInvalidDocument, "nil document")
	}
	conf := doc.Parameters.Config()
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInvalidDocument, "parameters: %v", err)
	}
	hash := doc.Parameters.Hash()
	if doc.ParameterHash != "" && doc.ParameterHash != hash {
		return nil, errors.Wrapf(ErrInvalidDocument, "parameter hash %s does not match parameters (%s)", doc.ParameterHash, hash)
	}
	if len(doc.Nodes) == 0 {
		return nil, errors.Wrap(ErrInvalidDocument, "document has no nodes")
	}

	nodes := make([]frozenNode, len(doc.Nodes))
	seen := make(map[int]map[childKey]struct{})
	for i, nd := range doc.Nodes {
		if err := validateNodeDocument(doc.Nodes, i, len(conf.Features)); err != nil {
			return nil, err
		}
		nodes[i] = frozenNode{
			depth:          nd.Depth,
			path:           append([]string{}, nd.Path...),
			count:          nd.Count,
			hitCount:       nd.HitCount,
			rejectionCount: nd.RejectionCount,
			label:          nd.Label,
			parent:         nd.Parent,
		}
		if i == rootIndex {
			continue
		}

		parentDepth := doc.Nodes[nd.Parent].Depth
		key := childKey{depth: nd.Depth, segment: joinSegment(nd.Path[parentDepth:])}
		if seen[nd.Parent] == nil {
			seen[nd.Parent] = make(map[childKey]struct{})
		}
		if _, ok := seen[nd.Parent][key]; ok {
			return nil, errors.Wrapf(ErrInvalidDocument, "node %d duplicates the key of a sibling", i)
		}
		seen[nd.Parent][key] = struct{}{}
		nodes[nd.Parent].children = append(nodes[nd.Parent].children, i)
	}
	indexNodes(nodes)

	return &ProfileTree{
		snapshotID:     doc.SnapshotID,
		builtAt:        doc.BuiltAt,
		datasetVersion: doc.DatasetVersion,
		conf:           conf,
		parameterHash:  hash,
		stats:          doc.Stats,
		nodes:          nodes,
	}, nil
}

func validateNodeDocument(nodes []NodeDocument, i, features int) error {
	nd := nodes[i]
	if !nd.Label.IsNodeLabel() {
		return errors.Wrapf(ErrInvalidDocument, "node %d has label %q", i, nd.Label)
	}
	if nd.Count < 0 || nd.HitCount < 0 || nd.HitCount > nd.Count || nd.RejectionCount < 0 || nd.RejectionCount > nd.Count {
		return errors.Wrapf(ErrInvalidDocument, "node %d has inconsistent counts", i)
	}
	if nd.Depth < 0 || nd.Depth > features || len(nd.Path) != nd.Depth {
		return errors.Wrapf(ErrInvalidDocument, "node %d has depth %d and %d path values", i, nd.Depth, len(nd.Path))
	}

	if i == rootIndex {
		if nd.Parent != noParent || nd.Depth != 0 {
			return errors.Wrap(ErrInvalidDocument, "first node is not a root")
		}
		return nil
	}
	if nd.Parent < 0 || nd.Parent >= i {
		return errors.Wrapf(ErrInvalidDocument, "node %d refers to parent %d", i, nd.Parent)
	}
	parent := nodes[nd.Parent]
	if nd.Depth <= parent.Depth {
		return errors.Wrapf(ErrInvalidDocument, "node %d is not deeper than its parent", i)
	}
	for j, v := range parent.Path {
		if nd.Path[j] != v {
			return errors.Wrapf(ErrInvalidDocument, "node %d does not extend the path of its parent", i)
		}
	}
	return nil
}

// ProfileEntry is one leaf profile of the flat profile export.
type ProfileEntry struct {
	Type          Label             `json:"type" msgpack:"type"`
	HitRate       float64           `json:"hitRate" msgpack:"hitRate"`
	RejectionRate float64           `json:"rejectionRate" msgpack:"rejectionRate"`
	Size          int64             `json:"size" msgpack:"size"`
	Depth         int               `json:"depth" msgpack:"depth"`
	Features      map[string]string `json:"features" msgpack:"features"`
}

// Profiles lists the leaf profiles of the tree in breadth-first order. The root is not a
// profile and is never listed.
func (pt *ProfileTree) Profiles() []ProfileEntry {
	entries := make([]ProfileEntry, 0)
	for i := range pt.nodes {
		n := &pt.nodes[i]
		if i == rootIndex || len(n.children) != 0 {
			continue
		}
		hitRate, rejectionRate := Rates(n.count, n.hitCount, n.rejectionCount)
		entries = append(entries, ProfileEntry{
			Type:          n.label,
			HitRate:       hitRate,
			RejectionRate: rejectionRate,
			Size:          n.count,
			Depth:         n.depth,
			Features:      pt.conditions(n.path),
		})
	}
	return entries
}
