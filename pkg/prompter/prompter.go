package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/instaintelli/cli/pkg/mfa"
	"golang.org/x/term"
)

var (
	// In is where prompts read from; tests replace it.
	In io.Reader = os.Stdin
	// Out is where prompt labels are written.
	Out io.Writer = os.Stdout

	reader *bufio.Reader
)

func lineReader() *bufio.Reader {
	if reader == nil {
		reader = bufio.NewReader(In)
	}
	return reader
}

// Reset drops buffered input after In is replaced.
func Reset() {
	reader = nil
}

// IsTerminal reports whether In is an interactive terminal.
func IsTerminal() bool {
	f, ok := In.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	fmt.Fprint(Out, label)
	input, err := lineReader().ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// PromptPassword prompts user for a password (hidden input)
func PromptPassword(label string) (string, error) {
	if !IsTerminal() {
		return PromptString(label)
	}

	fmt.Fprint(Out, label)
	f := In.(*os.File)
	bytepw, err := term.ReadPassword(int(f.Fd()))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(Out) // New line after password input

	return string(bytepw), nil
}

// PromptCode asks for an MFA code without echoing it and returns it
// normalized: six digits, or an upper-cased recovery code.
func PromptCode(label string) (string, error) {
	raw, err := PromptPassword(label)
	if err != nil {
		return "", err
	}
	code := mfa.Normalize(raw)
	if err := mfa.Validate(code); err != nil {
		return "", err
	}
	return code, nil
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	input, err := PromptString(label + " (y/n) ")
	if err != nil {
		return false, err
	}

	response := strings.ToLower(input)
	return response == "y" || response == "yes", nil
}

// PromptSelect prompts user to select from options
func PromptSelect(label string, options []string) (int, error) {
	fmt.Fprintln(Out, label)
	for i, opt := range options {
		fmt.Fprintf(Out, "%d) %s\n", i+1, opt)
	}

	input, err := PromptString("Select option: ")
	if err != nil {
		return -1, err
	}

	var selection int
	if _, err := fmt.Sscanf(input, "%d", &selection); err != nil {
		return -1, err
	}
	if selection < 1 || selection > len(options) {
		return -1, fmt.Errorf("invalid selection")
	}

	return selection - 1, nil
}

// PromptMultilineString prompts user for multi-line input
func PromptMultilineString(label string, maxLines int) (string, error) {
	fmt.Fprintf(Out, "%s (Enter an empty line to finish):\n", label)

	var lines []string
	for i := 0; i < maxLines; i++ {
		line, err := lineReader().ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}

		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break
		}
		lines = append(lines, trimmed)
		if err == io.EOF {
			break
		}
	}

	return strings.Join(lines, "\n"), nil
}
