// Command s3purge deletes every object in an S3 bucket and then the bucket.
//
// Usage:
//
//	s3purge [flags] <bucket-name>
package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3purge/cmd/s3purge/app"
)

func main() {
	cmd := &app.PurgeCommand{
		Program:   filepath.Base(os.Args[0]),
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		NewClient: app.NewClient,
	}
	os.Exit(cmd.Execute(context.Background(), os.Args[1:]))
}
