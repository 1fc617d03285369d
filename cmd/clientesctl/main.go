// Command clientesctl manages cliente records of the remote backend from the
// terminal, through the same list and form controllers as the web pages.
package main

import "os"

func main() {
	if err := execute(newRootCmd()); err != nil {
		os.Exit(1)
	}
}
