// Package archive builds and inspects Lambda deployment packages.
//
// A package is a zip file with one member: the handler source. Checksum
// renders the base64 SHA-256 digest Lambda reports as CodeSha256, which lets
// callers compare what they uploaded with what the service stored.
package archive
