package keystore

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

var ErrNoTerminal = errors.New("password required but stdin is not a terminal")

// PromptPassword reads a password from the terminal without echo.
func PromptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit into int

	if !term.IsTerminal(fd) {
		return "", ErrNoTerminal
	}

	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "failed to read password")
	}

	return string(password), nil
}

// PasswordOrPrompt returns password if set, otherwise asks on the terminal.
func PasswordOrPrompt(password string, prompt string) (string, error) {
	if password != "" {
		return password, nil
	}

	return PromptPassword(prompt)
}
