package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// errUnknownChoice is returned by GetChoice when the answer matches none of
// the options.
var errUnknownChoice = errors.New("unknown choice")

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The line is trimmed. If EOF occurs after some input was read, the partial
// line is returned.
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword reads a password from the terminal without echo. A newline is
// printed after the read to keep the UI tidy.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetChoice asks the user to pick one of options. An answer matches an option
// when it is a case-insensitive prefix of exactly one of them. An empty
// answer returns "" and no error.
func GetChoice(reader *bufio.Reader, prompt string, options []string, w io.Writer) (string, error) {
	answer, err := GetSimpleText(reader, fmt.Sprintf("%s [%s]", prompt, strings.Join(options, "/")), w)
	if err != nil {
		return "", err
	}
	answer = strings.ToLower(answer)
	if answer == "" {
		return "", nil
	}

	match := ""
	for _, o := range options {
		if strings.HasPrefix(o, answer) {
			if match != "" {
				return "", fmt.Errorf("%w: %q is ambiguous", errUnknownChoice, answer)
			}
			match = o
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %q", errUnknownChoice, answer)
	}
	return match, nil
}
