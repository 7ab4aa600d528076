package packager

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oshokin/lambda-deploy/internal/archive"
	"github.com/oshokin/lambda-deploy/internal/logger"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// Source is the handler file to package (defaults to lambda_function.py).
	Source string
	// ArchivePath is where the zip is written (defaults to lambda.zip).
	ArchivePath string
	// Output receives the human-readable report. Defaults to stdout.
	Output io.Writer
}

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "lambda-packager")

	if opts == nil {
		opts = new(Options)
	}

	logger.InfoKV(ctx, "Packaging handler", "source", sourceOrDefault(opts.Source))

	info, err := archive.Build(opts.Source, opts.ArchivePath)
	if err != nil {
		return fmt.Errorf("build archive: %w", err)
	}

	logger.InfoKV(ctx, "Archive created",
		"path", info.Path,
		"entry", info.Entry,
		"bytes", info.Size,
		"code_sha256", info.Checksum)

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	if _, err = io.WriteString(output, report(info)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// report renders the created archive and the next step.
func report(info *archive.Info) string {
	var builder strings.Builder

	builder.WriteString(info.Path)
	builder.WriteString(" created successfully!\n")
	builder.WriteString("CodeSha256: ")
	builder.WriteString(info.Checksum)
	builder.WriteString("\nDeploy it with: lambda-deploy --function-name <name> --role <role-arn> --zip ")
	builder.WriteString(info.Path)
	builder.WriteString("\n")

	return builder.String()
}

func sourceOrDefault(source string) string {
	if source == "" {
		return archive.DefaultSource
	}

	return source
}
