// Package version exposes build metadata for the lambda-deploy tools.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags.
// UserAgentKey names the tools in the AWS SDK user agent so requests are
// attributable in CloudTrail.
package version
