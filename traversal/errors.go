package traversal

import "errors"

var ErrUnboundAction = errors.New("terminal node action has no binding or effect")
