// FILE: logship/src/cmd/logship/run.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"logship/src/internal/source"
	"logship/src/internal/trigger"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Local run flags
type runOptions struct {
	bucket    string
	key       string
	root      string
	eventFile string
	dryRun    bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ship a single object and exit",
		Long: `Ship a single object outside Lambda.

The object is named either by --bucket/--key or by an S3 notification event
file. With --root, objects are read from <root>/<bucket>/<key> on the local
filesystem instead of S3.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "bucket name")
	cmd.Flags().StringVar(&opts.key, "key", "", "object key")
	cmd.Flags().StringVar(&opts.root, "root", "", "read objects from this directory instead of S3")
	cmd.Flags().StringVar(&opts.eventFile, "event", "", "S3 notification event JSON file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "write payloads to stderr instead of sending them")
	cmd.MarkFlagsMutuallyExclusive("event", "bucket")
	cmd.MarkFlagsMutuallyExclusive("event", "key")

	return cmd
}

func runOnce(cmd *cobra.Command, opts *runOptions) error {
	ref, err := opts.objectRef()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer shutdownLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("msg", "Signal received, cancelling run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var store source.ObjectStore
	if opts.root != "" {
		store, err = source.NewFileStore(opts.root)
	} else {
		store, err = source.NewS3Store(ctx)
	}
	if err != nil {
		return err
	}

	var console string
	if opts.dryRun {
		console = "stderr"
	}

	s, err := bootstrapShipper(ctx, cfg, store, "", console)
	if err != nil {
		return err
	}
	defer s.shutdown()

	ctx = lambdacontext.NewContext(ctx, &lambdacontext.LambdaContext{
		AwsRequestID:       uuid.NewString(),
		InvokedFunctionArn: "local",
	})

	result, err := s.invoke(ctx, ref)
	if err != nil {
		return err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	Print("%s\n", out)
	return nil
}

// objectRef resolves the target object from flags or an event file
func (o *runOptions) objectRef() (trigger.ObjectRef, error) {
	if o.eventFile == "" {
		if o.bucket == "" || o.key == "" {
			return trigger.ObjectRef{}, fmt.Errorf("either --event or both --bucket and --key are required")
		}
		return trigger.ObjectRef{Bucket: o.bucket, Key: o.key}, nil
	}

	data, err := os.ReadFile(o.eventFile)
	if err != nil {
		return trigger.ObjectRef{}, fmt.Errorf("read event file: %w", err)
	}
	var event events.S3Event
	if err := json.Unmarshal(data, &event); err != nil {
		return trigger.ObjectRef{}, fmt.Errorf("parse event file %s: %w", o.eventFile, err)
	}
	return trigger.FromS3Event(event)
}
