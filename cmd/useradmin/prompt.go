// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is replaced in tests so the terminal is never touched.
var readPassword = term.ReadPassword

// terminalPrompt reads secrets with echo disabled when in is a terminal and
// falls back to plain lines otherwise, so the command also works in scripts.
type terminalPrompt struct {
	fd       int
	terminal bool
	lines    *bufio.Reader
	out      io.Writer
}

func newTerminalPrompt(in *os.File, out io.Writer) *terminalPrompt {
	fd := int(in.Fd())
	return &terminalPrompt{
		fd:       fd,
		terminal: term.IsTerminal(fd),
		lines:    bufio.NewReader(in),
		out:      out,
	}
}

func (prompt *terminalPrompt) Password(label string) (string, error) {
	if !prompt.terminal {
		line, err := prompt.lines.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	if _, err := fmt.Fprint(prompt.out, label); err != nil {
		return "", err
	}
	secret, err := readPassword(prompt.fd)
	fmt.Fprintln(prompt.out)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
