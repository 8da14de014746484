// Command sieve configures a capability-gated sandbox from a manifest and
// links or runs its guest units.
package main

import "os"

func main() {
	if err := execute(newRootCmd()); err != nil {
		os.Exit(1)
	}
}
