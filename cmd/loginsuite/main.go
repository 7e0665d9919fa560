// Command loginsuite runs the login module's end-to-end scenarios.
package main

import "github.com/devicelab-dev/loginmodule-e2e/pkg/cli"

func main() {
	cli.Execute()
}
