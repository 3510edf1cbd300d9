// Package engine implements the behavior tree execution core: the node
// arena, order computation, execution cursors, parallel sub-cursor
// synchronization, observer aborts, and tree instancing.
//
// The engine is behavior-agnostic. Concrete node behaviors (actions,
// conditions, composites) live outside this package and plug in through the
// Behavior interface. Scheduling is single-threaded and cooperative: the
// host calls Tree.Update once per frame, and a node returning StatusRunning
// is the only suspension mechanism.
package engine

// Status is the result of evaluating a node.
type Status uint8

const (
	// StatusInvalid means the node has not produced a result yet, or its
	// previous result was discarded by an interrupt.
	StatusInvalid Status = iota
	// StatusRunning means the node has not resolved and will be evaluated
	// again next tick.
	StatusRunning
	// StatusSuccess means the node resolved successfully.
	StatusSuccess
	// StatusFailure means the node resolved unsuccessfully.
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusInvalid:
		return "invalid"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Kind tags a node's structural role. It replaces dynamic type tests for
// structural decisions such as child-count validation and parallel cursor
// assignment.
type Kind uint8

const (
	// KindLeaf nodes have no children.
	KindLeaf Kind = iota
	// KindDecorator nodes have exactly one child.
	KindDecorator
	// KindComposite nodes have any number of children, run via the owning
	// cursor.
	KindComposite
	// KindParallel nodes have any number of children, each run by a
	// dedicated sub-cursor.
	KindParallel
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindDecorator:
		return "decorator"
	case KindComposite:
		return "composite"
	case KindParallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// maxChildren returns the child limit for the kind, or -1 for unbounded.
func (k Kind) maxChildren() int {
	switch k {
	case KindLeaf:
		return 0
	case KindDecorator:
		return 1
	default:
		return -1
	}
}
