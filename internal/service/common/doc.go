// Package common holds the AWS plumbing shared by the services.
//
// Client wraps the Lambda and S3 SDK clients with a per-call timeout and
// turns an environment without usable AWS configuration into a
// deployment.ErrClientUnavailable error at construction time. FunctionAPI and
// CodeStore are the narrow views the deployer depends on; both are satisfied
// by the SDK clients themselves and by test fakes.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
