package controller

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jt828/promtext/pkg/apperror"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type ExpositionController struct {
	sources map[string]io.WriterTo
}

func NewExpositionController(sources map[string]io.WriterTo) *ExpositionController {
	return &ExpositionController{sources: sources}
}

func (ctrl *ExpositionController) Render(
	ctx context.Context,
	request *wrapperspb.StringValue,
) (*wrapperspb.StringValue, error) {
	name := request.GetValue()
	if name == "" {
		return nil, fmt.Errorf("set name is required: %w", apperror.ErrInvalidArgument)
	}
	source, ok := ctrl.sources[name]
	if !ok {
		return nil, fmt.Errorf("set %q: %w", name, apperror.ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	if _, err := source.WriteTo(&b); err != nil {
		return nil, fmt.Errorf("render set %q: %w", name, err)
	}
	return wrapperspb.String(b.String()), nil
}
