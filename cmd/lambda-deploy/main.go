// Command lambda-deploy creates or updates an AWS Lambda function from a zip package.
package main

import "github.com/oshokin/lambda-deploy/cmd/lambda-deploy/cmd"

func main() {
	cmd.Execute()
}
