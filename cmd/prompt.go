package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const tokenPrompt = "Please enter your GitHub Access Token: "

// promptToken asks for the access token on out and reads one line from in.
func promptToken(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, tokenPrompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return "", errors.New("no GitHub access token given")
	}
	return token, nil
}
