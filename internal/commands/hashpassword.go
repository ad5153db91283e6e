package commands

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// HashPassword handles the hash-password subcommand. It prompts for a
// password and prints a bcrypt hash suitable for
// MERGINGTON_ADMIN_PASSWORD_HASH.
func HashPassword(args []string) {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: server hash-password [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Prompts for a password and prints its bcrypt hash.\n")
		fmt.Fprintf(os.Stderr, "Export the hash as MERGINGTON_ADMIN_PASSWORD_HASH to gate the unregister endpoint.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	password := readPassword("Enter password:   ")
	confirm := readPassword("Confirm password: ")

	if password == "" {
		fmt.Fprintln(os.Stderr, "Password cannot be empty")
		os.Exit(1)
	}
	if password != confirm {
		fmt.Fprintln(os.Stderr, "Passwords do not match")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(hash))
}

// readPassword reads a password without echoing it. When stdin is not a
// terminal (piped input) it falls back to a plain line read.
func readPassword(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
			os.Exit(1)
		}
		return string(password)
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		os.Exit(1)
	}
	return strings.TrimRight(line, "\r\n")
}
