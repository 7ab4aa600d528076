package deployer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/lambda-deploy/internal/domain/deployment"
)

// Format selects how a Result is rendered.
type Format string

const (
	// FormatText prints a human-readable report.
	FormatText Format = "text"
	// FormatYAML prints the Result as YAML.
	FormatYAML Format = "yaml"
)

var (
	errUnknownFormat = errors.New("unknown output format")
	errNoResult      = errors.New("nothing to report")
)

// ParseFormat validates an output format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownFormat, s)
	}
}

// Render writes res to w in the requested format.
func Render(w io.Writer, res *deployment.Result, format Format) error {
	if res == nil {
		return errNoResult
	}

	var contents []byte

	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}

		contents = data
	case FormatText, "":
		contents = []byte(renderText(res))
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}

	if _, err := w.Write(contents); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

func renderText(res *deployment.Result) string {
	var builder strings.Builder

	switch res.Outcome {
	case deployment.OutcomeDryRun:
		writePlan(&builder, res.Plan)
		builder.WriteString("\nDry run complete. No AWS changes made.\n")
	case deployment.OutcomeCreated, deployment.OutcomeUpdated:
		if res.Outcome == deployment.OutcomeCreated {
			builder.WriteString("Created new Lambda: ")
		} else {
			builder.WriteString("Updated existing Lambda: ")
		}

		builder.WriteString(res.FunctionArn)
		builder.WriteString("\n")

		if res.Version != "" {
			builder.WriteString("Version: ")
			builder.WriteString(res.Version)
			builder.WriteString("\n")
		}

		builder.WriteString("\nLambda deployed successfully! ARN: ")
		builder.WriteString(res.FunctionArn)
		builder.WriteString("\n")
	default:
		builder.WriteString("Deployment finished (no ARN returned).\n")
	}

	return builder.String()
}

func writePlan(builder *strings.Builder, plan *deployment.Plan) {
	builder.WriteString("=== DRY RUN ===\n")

	if plan == nil {
		builder.WriteString("No network calls were made (dry-run).\n")
		return
	}

	line := func(key, value string) {
		builder.WriteString("  ")
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(value)
		builder.WriteString("\n")
	}

	builder.WriteString("Would deploy Lambda with:\n")
	line("FunctionName", plan.FunctionName)
	line("ZipFile", plan.ArchivePath)
	line("Runtime", plan.Runtime)
	line("Role", plan.Role)
	line("Handler", plan.Handler)
	builder.WriteString("  Timeout: " + strconv.Itoa(int(plan.Timeout)) +
		", Memory: " + strconv.Itoa(int(plan.MemorySize)) + "\n")
	line("Publish", strconv.FormatBool(plan.Publish))

	if plan.Region != "" {
		line("Region", plan.Region)
	}

	if plan.S3Bucket != "" {
		line("S3Location", "s3://"+plan.S3Bucket+"/"+plan.S3Key)
	}

	line("CodeSize", strconv.FormatInt(plan.ArchiveSize, 10))
	line("CodeSha256", plan.CodeSha256)

	if len(plan.Entries) > 0 {
		line("Entries", strings.Join(plan.Entries, ", "))
	}

	builder.WriteString("No network calls were made (dry-run).\n")
}
