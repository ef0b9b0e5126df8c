package objectstore

import (
	"errors"
	"net/http"

	"github.com/aws/smithy-go"
)

// httpStatusError is satisfied by both smithyhttp.ResponseError and the
// awshttp wrapper around it.
type httpStatusError interface {
	HTTPStatusCode() int
}

func isPreconditionFailed(err error) bool {
	var se httpStatusError
	if errors.As(err, &se) && se.HTTPStatusCode() == http.StatusPreconditionFailed {
		return true
	}
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "PreconditionFailed"
}
