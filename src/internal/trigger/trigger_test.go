// FILE: logship/src/internal/trigger/trigger_test.go
package trigger

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func s3Event(bucket, key string) events.S3Event {
	return events.S3Event{
		Records: []events.S3EventRecord{{
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: bucket},
				Object: events.S3Object{Key: key},
			},
		}},
	}
}

func TestFromS3Event(t *testing.T) {
	testCases := []struct {
		name    string
		event   events.S3Event
		want    ObjectRef
		wantErr bool
	}{
		{
			name:  "Plain",
			event: s3Event("bucket", "logs/app.log"),
			want:  ObjectRef{Bucket: "bucket", Key: "logs/app.log"},
		},
		{
			name:  "PlusIsSpace",
			event: s3Event("bucket", "logs/my+file.log"),
			want:  ObjectRef{Bucket: "bucket", Key: "logs/my file.log"},
		},
		{
			name:  "PercentEncoded",
			event: s3Event("bucket", "logs/a%3Db%2Cc.log"),
			want:  ObjectRef{Bucket: "bucket", Key: "logs/a=b,c.log"},
		},
		{
			name:    "NoRecords",
			event:   events.S3Event{},
			wantErr: true,
		},
		{
			name:    "MissingBucket",
			event:   s3Event("", "k"),
			wantErr: true,
		},
		{
			name:    "BadEscape",
			event:   s3Event("bucket", "logs/%zz"),
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := FromS3Event(tc.event)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, ref)
		})
	}
}

func TestFromS3Event_UsesFirstRecord(t *testing.T) {
	event := s3Event("first", "a.log")
	event.Records = append(event.Records, s3Event("second", "b.log").Records...)

	ref, err := FromS3Event(event)
	require.NoError(t, err)
	assert.Equal(t, "first", ref.Bucket)
}

func TestInvocation(t *testing.T) {
	ref := ObjectRef{Bucket: "bucket", Key: "k"}

	inv := Invocation(context.Background(), ref)
	assert.Empty(t, inv.FunctionARN)
	assert.Equal(t, "bucket", inv.Bucket)

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{
		AwsRequestID:       "req-1",
		InvokedFunctionArn: "arn:aws:lambda:us-east-1:1:function:logship",
	})
	inv = Invocation(ctx, ref)
	assert.Equal(t, "req-1", inv.RequestID)
	assert.Equal(t, "arn:aws:lambda:us-east-1:1:function:logship", inv.FunctionARN)
	assert.Equal(t, "s3://bucket/k", inv.URL())
}
