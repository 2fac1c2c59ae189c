package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for golang.org/x/term.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	return readLine(reader)
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints a password prompt to w and reads a password without
// echo when stdin is a terminal. Piped input is read as a plain line from
// reader.
func GetPassword(reader *bufio.Reader, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return "", err
	}

	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		pw, err := readLine(reader)
		fmt.Fprintln(w)
		return pw, err
	}

	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// GetChoice prompts until the answer is one of options (case-insensitive)
// and returns it lower-cased.
func GetChoice(reader *bufio.Reader, prompt string, options []string, w io.Writer) (string, error) {
	for {
		answer, err := GetSimpleText(reader, fmt.Sprintf("%s [%s]", prompt, strings.Join(options, "/")), w)
		if err != nil {
			return "", err
		}
		answer = strings.ToLower(answer)
		for _, o := range options {
			if answer == o {
				return answer, nil
			}
		}
		fmt.Fprintf(w, "Please choose one of: %s\n", strings.Join(options, ", "))
	}
}

// GetConfirmation asks a yes/no question. Only "y" and "yes" confirm.
func GetConfirmation(reader *bufio.Reader, prompt string, w io.Writer) (bool, error) {
	if _, err := fmt.Fprintf(w, "%s [y/N] ", prompt); err != nil {
		return false, err
	}
	answer, err := readLine(reader)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// confirmer adapts GetConfirmation to the controller's confirmation hook.
func (a *App) confirmer() func(ctx context.Context, prompt string) (bool, error) {
	return func(ctx context.Context, prompt string) (bool, error) {
		return GetConfirmation(a.reader, prompt, a.out)
	}
}
