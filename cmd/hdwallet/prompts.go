package main

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	walleterr "github.com/ledgerforge/hdwallet/pkg/errors"
)

// promptPassword prompts for a password with hidden terminal input. The
// caller is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, walleterr.Wrap(err, "reading password")
	}
	return password, nil
}

// promptNewPassword prompts for a new password and a confirming re-entry,
// failing if the two do not match.
func promptNewPassword() ([]byte, error) {
	first, err := promptPassword("Enter encryption password: ")
	if err != nil {
		return nil, err
	}
	second, err := promptPassword("Confirm encryption password: ")
	if err != nil {
		zeroBytes(first)
		return nil, err
	}
	defer zeroBytes(second)

	if string(first) != string(second) {
		zeroBytes(first)
		return nil, walleterr.New("PASSWORD_MISMATCH", "passwords do not match")
	}
	return first, nil
}

// zeroBytes overwrites b in place so a password does not linger in memory
// longer than necessary.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
