// Package deployment contains the core types of a single Lambda deployment.
//
// A Request is built once per invocation, handed to the deployer and
// discarded. The deployer answers with a Result (updated, created or dry-run)
// or a classified *Error.
package deployment
