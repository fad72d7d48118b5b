// taskctl is a terminal client for the task-tracker API. It keeps the
// session cookie in a local jar file so consecutive invocations share one
// login, mirroring how the browser client holds the HTTP-only cookie.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
