// FILE: logship/src/cmd/logship/lambda.go
package main

import (
	"context"

	"logship/src/internal/core"
	"logship/src/internal/source"
	"logship/src/internal/trigger"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/spf13/cobra"
)

func newLambdaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Serve S3 notifications as an AWS Lambda handler (default)",
		Args:  cobra.NoArgs,
		RunE:  runLambda,
	}
}

// runLambda builds the shipper once at cold start and serves invocations
// until the runtime stops the process
func runLambda(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer shutdownLogger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := source.NewS3Store(ctx)
	if err != nil {
		return err
	}

	s, err := bootstrapShipper(ctx, cfg, store, lambdacontext.FunctionName, "")
	if err != nil {
		return err
	}
	defer s.shutdown()

	lambda.Start(newHandler(s))
	return nil
}

// newHandler adapts the shipper to the S3 notification signature
func newHandler(s *shipper) func(context.Context, events.S3Event) (core.RunResult, error) {
	return func(ctx context.Context, event events.S3Event) (core.RunResult, error) {
		ref, err := trigger.FromS3Event(event)
		if err != nil {
			logger.Error("msg", "Invalid S3 event",
				"records", len(event.Records),
				"error", err)
			return core.RunResult{}, err
		}
		return s.invoke(ctx, ref)
	}
}
