// Package packager builds the zip package deployed by lambda-deploy.
//
// It wraps a single handler source file into a one-member archive and
// reports the archive's CodeSha256 so it can be matched against what Lambda
// stores after deploying.
package packager
