// FILE: logship/src/internal/trigger/trigger.go
package trigger

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"logship/src/internal/core"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
)

// ErrNoRecords is returned for an event that names no object
var ErrNoRecords = errors.New("S3 event contains no records")

// ObjectRef names the object a run processes
type ObjectRef struct {
	Bucket string
	Key    string
}

// FromS3Event extracts the first record of an object-created notification.
// Keys arrive form-encoded, so "+" decodes to a space.
func FromS3Event(event events.S3Event) (ObjectRef, error) {
	if len(event.Records) == 0 {
		return ObjectRef{}, ErrNoRecords
	}

	record := event.Records[0]
	bucket := record.S3.Bucket.Name
	if bucket == "" {
		return ObjectRef{}, fmt.Errorf("missing bucket name in S3 event record")
	}

	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return ObjectRef{}, fmt.Errorf("decode object key %q: %w", record.S3.Object.Key, err)
	}
	if key == "" {
		return ObjectRef{}, fmt.Errorf("missing object key in S3 event record")
	}

	return ObjectRef{Bucket: bucket, Key: key}, nil
}

// Invocation builds the run metadata from the Lambda context in ctx, when
// present, and the object reference.
func Invocation(ctx context.Context, ref ObjectRef) core.Invocation {
	inv := core.Invocation{Bucket: ref.Bucket, Key: ref.Key}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		inv.FunctionARN = lc.InvokedFunctionArn
		inv.RequestID = lc.AwsRequestID
	}
	return inv
}
