// Package deployer creates or updates a Lambda function from a zip package.
//
// Deployer.Deploy tries UpdateFunctionCode first and falls back to
// CreateFunction only when Lambda answers that the function does not exist.
// Every other failure ends the call; nothing is retried. Run is the command
// entry point: it resolves settings, builds the AWS client unless the run is
// a dry-run, and renders the Result.
package deployer
