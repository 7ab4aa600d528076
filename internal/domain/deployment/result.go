package deployment

// Outcome tells what a deployment call ended up doing.
type Outcome string

const (
	// OutcomeUpdated means the code of an existing function was replaced.
	OutcomeUpdated Outcome = "updated"
	// OutcomeCreated means a new function was created.
	OutcomeCreated Outcome = "created"
	// OutcomeDryRun means nothing was sent to AWS.
	OutcomeDryRun Outcome = "dry-run"
)

// Plan is what a dry-run would have deployed.
type Plan struct {
	FunctionName string   `yaml:"function_name"`
	ArchivePath  string   `yaml:"archive"`
	Runtime      string   `yaml:"runtime"`
	Role         string   `yaml:"role"`
	Handler      string   `yaml:"handler"`
	Region       string   `yaml:"region,omitempty"`
	S3Bucket     string   `yaml:"s3_bucket,omitempty"`
	S3Key        string   `yaml:"s3_key,omitempty"`
	CodeSha256   string   `yaml:"code_sha256,omitempty"`
	Entries      []string `yaml:"entries,omitempty"`
	ArchiveSize  int64    `yaml:"archive_size"`
	Timeout      int32    `yaml:"timeout"`
	MemorySize   int32    `yaml:"memory_size"`
	Publish      bool     `yaml:"publish"`
}

// Result is the outcome of a deployment that did not fail.
type Result struct {
	Outcome     Outcome `yaml:"outcome"`
	FunctionArn string  `yaml:"function_arn,omitempty"`
	Version     string  `yaml:"version,omitempty"`
	CodeSha256  string  `yaml:"code_sha256,omitempty"`
	Plan        *Plan   `yaml:"plan,omitempty"`
}

// Succeeded reports whether the function was actually updated or created.
func (r *Result) Succeeded() bool {
	if r == nil {
		return false
	}

	return r.Outcome == OutcomeUpdated || r.Outcome == OutcomeCreated
}
