package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if line == "" && err == io.EOF {
		return "", io.EOF
	}
	return strings.TrimSpace(line), nil
}

// PromptMissing interactively fills any unset fields, reading from in
// and writing prompts to out. The timezone defaults to UTC when the
// answer is empty; the export format is re-asked until it is valid.
func (c *Config) PromptMissing(in *bufio.Reader, out io.Writer) error {
	if c.URL == "" {
		fmt.Fprint(out, "Enter your Uptime Kuma URL (e.g., http://localhost:3001): ")
		v, err := readLine(in)
		if err != nil {
			return err
		}
		c.URL = v
	}
	if c.Username == "" {
		fmt.Fprint(out, "Enter your Uptime Kuma username: ")
		v, err := readLine(in)
		if err != nil {
			return err
		}
		c.Username = v
	}
	if c.Timezone == "" {
		fmt.Fprint(out, "Enter your timezone (e.g., America/New_York, default: UTC): ")
		v, err := readLine(in)
		if err != nil {
			return err
		}
		if v == "" {
			v = "UTC"
		}
		c.Timezone = v
	}
	for !ValidFormat(c.ExportFormat) {
		if c.ExportFormat != "" {
			fmt.Fprintln(out, "Invalid format. Please choose 'pdf', 'csv', or 'xlsx'.")
		}
		fmt.Fprint(out, "Choose export format (pdf, csv, xlsx): ")
		v, err := readLine(in)
		if err != nil {
			return err
		}
		c.ExportFormat = strings.ToLower(v)
	}
	return nil
}

// PromptPassword reads a password from stdin, without echo when stdin
// is a terminal.
func PromptPassword(username string) (string, error) {
	fmt.Printf("Enter password for '%s': ", username)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		return string(b), err
	}

	// Piped input, e.g. in CI
	return readLine(bufio.NewReader(os.Stdin))
}
