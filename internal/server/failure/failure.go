// Package failure maps errors from the object store, the record store and
// the text generator onto a small set of user-facing categories.
package failure

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/logging"
)

type Category string

const (
	Validation       Category = "validation"
	NotConfigured    Category = "not_configured"
	Credentials      Category = "credentials"
	MissingContainer Category = "missing_container"
	AccessPolicy     Category = "access_policy"
	RateLimited      Category = "rate_limited"
	Unavailable      Category = "unavailable"
	Network          Category = "network"
	Unknown          Category = "unknown"
)

// Step names the workflow stage a failure happened in.
type Step string

const (
	StepValidate Step = "validate"
	StepLookup   Step = "lookup"
	StepList     Step = "list"
	StepDelete   Step = "delete"
	StepUpload   Step = "upload"
	StepDescribe Step = "describe"
	StepEnhance  Step = "enhance"
)

var messages = map[Category]string{
	NotConfigured:    "This integration is not configured. Set its endpoint and access key and restart the service.",
	Credentials:      "The service rejected the configured credentials. Check the access key and secret.",
	MissingContainer: "The storage container does not exist. Create it or correct its name in the configuration.",
	AccessPolicy:     "The access policy does not allow this operation. Check the bucket or table permissions.",
	RateLimited:      "Too many requests. Wait a moment and try again.",
	Unavailable:      "The upstream service is temporarily unavailable. Try again later.",
	Network:          "The service could not be reached. Check the network connection and try again.",
}

// Failure is a classified, user-presentable error.
type Failure struct {
	Category  Category `json:"category"`
	Step      Step     `json:"step"`
	Message   string   `json:"message"`
	Raw       string   `json:"-"`
	Retryable bool     `json:"retryable"`

	err error
}

// New classifies err. It returns nil for a nil error and passes an existing
// *Failure through unchanged.
func New(step Step, err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	c := Classify(err)
	return &Failure{
		Category:  c,
		Step:      step,
		Message:   Message(c, err),
		Raw:       err.Error(),
		Retryable: c.Retryable(),
		err:       err,
	}
}

func (f *Failure) Error() string {
	return string(f.Step) + ": " + f.Message
}

func (f *Failure) Unwrap() error {
	return f.err
}

// Retryable reports whether the category is transient.
func (c Category) Retryable() bool {
	switch c {
	case RateLimited, Unavailable, Network:
		return true
	}
	return false
}

// Message returns the user-facing text for c. Validation and unknown
// failures surface the error text itself.
func Message(c Category, err error) string {
	if m, ok := messages[c]; ok {
		return m
	}
	if err == nil {
		return "Something went wrong."
	}
	msg := err.Error()
	if c == Validation {
		if i := strings.LastIndex(msg, common.ErrorValidation.Error()+": "); i >= 0 {
			msg = msg[i+len(common.ErrorValidation.Error())+2:]
		}
	}
	return msg
}

// Log writes the raw upstream message together with the classification.
func Log(ctx context.Context, l logging.Logger, f *Failure) {
	if f == nil {
		return
	}
	l.Error(ctx, "operation failed",
		"category", string(f.Category),
		"step", string(f.Step),
		"retryable", f.Retryable,
		"error", f.Raw,
	)
}
