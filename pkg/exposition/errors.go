package exposition

import (
	"fmt"

	"github.com/jt828/promtext/pkg/apperror"
)

// Configuration errors. All of them wrap apperror.ErrInvalidArgument.
var (
	ErrUnorderedBuckets = fmt.Errorf("histogram buckets must be in strictly ascending order: %w", apperror.ErrInvalidArgument)
	ErrNonFiniteBucket  = fmt.Errorf("histogram buckets must be finite: %w", apperror.ErrInvalidArgument)
	ErrLabelShape       = fmt.Errorf("histogram label type must be a LabelSet or a struct: %w", apperror.ErrInvalidArgument)
	ErrMissingLabelName = fmt.Errorf("single-label collection requires a label name: %w", apperror.ErrInvalidArgument)
	ErrLabelOnHistogram = fmt.Errorf("histograms take their labels from the label type, not a label name: %w", apperror.ErrInvalidArgument)
	ErrUnexpectedLabel  = fmt.Errorf("label name is only supported on single-label collections: %w", apperror.ErrInvalidArgument)
	ErrKindMismatch     = fmt.Errorf("metric kind does not match value shape: %w", apperror.ErrInvalidArgument)
	ErrUnknownKind      = fmt.Errorf("unknown metric kind: %w", apperror.ErrInvalidArgument)
	ErrNotCollection    = fmt.Errorf("value is not a key/value collection: %w", apperror.ErrInvalidArgument)
	ErrInvalidName      = fmt.Errorf("invalid metric or label name: %w", apperror.ErrInvalidArgument)
	ErrMissingHelp      = fmt.Errorf("metric help text is required: %w", apperror.ErrInvalidArgument)
	ErrMissingGetter    = fmt.Errorf("metric value getter is required: %w", apperror.ErrInvalidArgument)
	ErrDuplicateLabel   = fmt.Errorf("label name used more than once: %w", apperror.ErrInvalidArgument)
	ErrDuplicateMetric  = fmt.Errorf("metric already registered: %w", apperror.ErrInvalidArgument)
)
