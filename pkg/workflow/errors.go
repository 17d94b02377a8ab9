package workflow

import (
	"errors"
	"fmt"

	"github.com/dukex/textflow/pkg/models"
)

var (
	// ErrAlreadyExecuting is returned when Execute is called while a run is in progress.
	ErrAlreadyExecuting = errors.New("workflow is already executing")

	ErrConfiguration = models.ErrConfiguration
	ErrTransport     = models.ErrTransport
	ErrDecode        = models.ErrDecode

	// ErrUnclassified is the kind of a node error that carries none of the classes above,
	// such as a cancelled context.
	ErrUnclassified = errors.New("unclassified node error")
)

// NodeError reports the node that aborted a run.
type NodeError struct {
	Index  int
	NodeID string
	Type   models.NodeType
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %d (%s %s) failed: %v", e.Index, e.Type, e.NodeID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// Kind returns the failure class of the error, or ErrUnclassified when the
// wrapped error carries none.
func (e *NodeError) Kind() error {
	for _, kind := range []error{ErrConfiguration, ErrDecode, ErrTransport} {
		if errors.Is(e.Err, kind) {
			return kind
		}
	}

	return ErrUnclassified
}

// Is matches the failure class. The wrapped chain is matched through Unwrap.
func (e *NodeError) Is(target error) bool {
	return target == e.Kind()
}

// AsNodeError returns the NodeError in err's chain.
func AsNodeError(err error) (*NodeError, bool) {
	var nodeErr *NodeError
	if errors.As(err, &nodeErr) {
		return nodeErr, true
	}

	return nil, false
}
