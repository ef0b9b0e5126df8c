package failure

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/aws/smithy-go"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/server/textgen"
)

type httpStatusError interface {
	HTTPStatusCode() int
}

var s3Codes = map[string]Category{
	"InvalidAccessKeyId":           Credentials,
	"SignatureDoesNotMatch":        Credentials,
	"InvalidToken":                 Credentials,
	"ExpiredToken":                 Credentials,
	"AuthorizationHeaderMalformed": Credentials,
	"NoSuchBucket":                 MissingContainer,
	"AccessDenied":                 AccessPolicy,
	"AllAccessDisabled":            AccessPolicy,
	"AccountProblem":               AccessPolicy,
	"SlowDown":                     RateLimited,
	"Throttling":                   RateLimited,
	"ThrottlingException":          RateLimited,
	"TooManyRequests":              RateLimited,
	"RequestLimitExceeded":         RateLimited,
	"InternalError":                Unavailable,
	"ServiceUnavailable":           Unavailable,
	"XMinioServerNotInitialized":   Unavailable,
}

var pgCodes = map[string]Category{
	"28000": Credentials,      // invalid_authorization_specification
	"28P01": Credentials,      // invalid_password
	"3D000": MissingContainer, // invalid_catalog_name
	"42P01": MissingContainer, // undefined_table
	"42501": AccessPolicy,     // insufficient_privilege
	"53300": RateLimited,      // too_many_connections
	"57P01": Unavailable,      // admin_shutdown
	"57P03": Unavailable,      // cannot_connect_now
}

type rule struct {
	needle   string
	category Category
}

// Checked in order against the lower-cased message.
var substrings = []rule{
	{"invalid api key", Credentials},
	{"api key not valid", Credentials},
	{"invalid credentials", Credentials},
	{"invalid jwt", Credentials},
	{"unauthorized", Credentials},
	{"bucket not found", MissingContainer},
	{"no such bucket", MissingContainer},
	{"does not exist", MissingContainer},
	{"row-level security", AccessPolicy},
	{"access denied", AccessPolicy},
	{"permission denied", AccessPolicy},
	{"forbidden", AccessPolicy},
	{"rate limit", RateLimited},
	{"too many requests", RateLimited},
	{"resource_exhausted", RateLimited},
	{"quota", RateLimited},
	{"service unavailable", Unavailable},
	{"bad gateway", Unavailable},
	{"overloaded", Unavailable},
	{"connection refused", Network},
	{"no such host", Network},
	{"network is unreachable", Network},
	{"failed to fetch", Network},
	{"fetch failed", Network},
}

// Classify picks the category for err: sentinel errors first, then typed
// upstream errors, then message substrings.
func Classify(err error) Category {
	if err == nil {
		return Unknown
	}

	var f *Failure
	if errors.As(err, &f) {
		return f.Category
	}

	switch {
	case errors.Is(err, common.ErrorValidation):
		return Validation
	case errors.Is(err, common.ErrNotConfigured):
		return NotConfigured
	}

	var se *textgen.StatusError
	if errors.As(err, &se) {
		if c, ok := fromStatus(se.Code); ok {
			return c
		}
	}

	var ae smithy.APIError
	if errors.As(err, &ae) {
		if c, ok := s3Codes[ae.ErrorCode()]; ok {
			return c
		}
	}

	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		if c, ok := pgCodes[pe.Code]; ok {
			return c
		}
		if strings.HasPrefix(pe.Code, "08") {
			return Network
		}
	}

	var he httpStatusError
	if errors.As(err, &he) {
		if c, ok := fromStatus(he.HTTPStatusCode()); ok {
			return c
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, context.DeadlineExceeded) {
		return Network
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return Network
	}

	msg := strings.ToLower(err.Error())
	for _, r := range substrings {
		if strings.Contains(msg, r.needle) {
			return r.category
		}
	}
	return Unknown
}

func fromStatus(code int) (Category, bool) {
	switch {
	case code == http.StatusBadRequest:
		return Validation, true
	case code == http.StatusUnauthorized:
		return Credentials, true
	case code == http.StatusForbidden:
		return AccessPolicy, true
	case code == http.StatusTooManyRequests:
		return RateLimited, true
	case code >= http.StatusInternalServerError:
		return Unavailable, true
	}
	return "", false
}

// HTTPStatus is the status the API answers with for a failure of category c.
func HTTPStatus(c Category) int {
	switch c {
	case Validation:
		return http.StatusBadRequest
	case Credentials:
		return http.StatusUnauthorized
	case AccessPolicy:
		return http.StatusForbidden
	case RateLimited:
		return http.StatusTooManyRequests
	case Unavailable:
		return http.StatusBadGateway
	case Network:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
