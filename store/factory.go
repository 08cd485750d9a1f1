package store

import (
	"fmt"
)

// NewFactHandler builds the concrete handler for a range from its
// typed construction model. The page codec variant is selected here,
// by configuration, so callers only ever see the FactHandler
// capability interface.
func NewFactHandler(model HandlerModel) (FactHandler, error) {

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid handler model : %s", err.Error())
	}

	codec, codecErr := codecByName(model.Compression)
	if codecErr != nil {
		return nil, codecErr
	}

	return newPageWriter(model, codec), nil
}
