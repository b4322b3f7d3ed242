package cidutil

import "errors"

var ErrNotAttributeIID = errors.New("cidutil: not an attribute iid")
