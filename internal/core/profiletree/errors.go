package profiletree

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig is returned when a Config fails validation. It is fatal: thresholds are
	// never clamped into range.
	ErrInvalidConfig = errors.New("profiletree: invalid configuration")

	// ErrInvalidRecord is returned when a historical record carries inconsistent counts.
	ErrInvalidRecord = errors.New("profiletree: invalid historical record")

	// ErrNoRecords is returned when a build is requested without any historical record.
	ErrNoRecords = errors.New("profiletree: no historical records")

	// ErrZeroCountNode reports a node with count 0 reaching the classifier.
	ErrZeroCountNode = errors.New("profiletree: zero-count node reached classification")

	// ErrInvalidVector is returned by the matcher for a characteristic vector longer than the
	// feature list the tree was built with.
	ErrInvalidVector = errors.New("profiletree: invalid characteristic vector")

	// ErrInvalidDocument is returned when a serialized tree cannot be turned back into a tree.
	ErrInvalidDocument = errors.New("profiletree: invalid tree document")
)
