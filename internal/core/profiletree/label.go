package profiletree

// Label is the profile type attached to a node, or the outcome of a match.
type Label string

const (
	// LabelUnset marks a node that has not been classified yet.
	LabelUnset Label = ""

	// LabelFavorable ("kansprofiel") indicates an expected low need for scrutiny.
	LabelFavorable Label = "favorable"

	// LabelRisk ("risicoprofiel") indicates an expected high need for scrutiny.
	LabelRisk Label = "risk"

	// LabelNeutral ("inbetween") indicates an indeterminate group.
	LabelNeutral Label = "neutral"

	// LabelNoProfile is only produced by matching: no path of the tree matches the request.
	// Downstream it is treated like LabelNeutral.
	LabelNoProfile Label = "no-profile"
)

func (l Label) String() string {
	return string(l)
}

// IsNodeLabel reports whether l may be attached to a tree node.
func (l Label) IsNodeLabel() bool {
	return l == LabelFavorable || l == LabelRisk || l == LabelNeutral
}
