// Command hdwallet is a minimal Cobra front end over the wallet engine:
// create, decrypt, recover, address, balance, send, sync.
package main

import (
	"fmt"
	"os"

	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(walleterr.ExitCode(err))
	}
}
