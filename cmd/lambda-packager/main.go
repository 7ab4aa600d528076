// Command lambda-packager wraps a handler source file into a Lambda zip package.
package main

import "github.com/oshokin/lambda-deploy/cmd/lambda-packager/cmd"

func main() {
	cmd.Execute()
}
