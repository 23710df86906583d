// Command create-admin creates an admin account, or promotes the account
// that already owns the email. Admins cannot self-register through the API.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"productivity/internal/cli"
	"productivity/internal/config"
	"productivity/internal/log"
)

// passwordReader reads a password without echoing it when stdin is a terminal.
type passwordReader func(stdin io.Reader, stderr io.Writer) (string, error)

func main() {
	cli.LoadEnvFile()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr, readPassword))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, prompt passwordReader) int {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	name := fs.String("name", "Administrator", "display name for a new admin")
	email := fs.String("email", "", "admin email (required)")
	password := fs.String("password", "", "admin password; prompted for when empty")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(stderr, "create-admin: -email is required")
		fs.Usage()
		return 2
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "create-admin: %v\n", err)
		return 1
	}

	pw := *password
	if pw == "" {
		if pw, err = prompt(stdin, stderr); err != nil {
			fmt.Fprintf(stderr, "create-admin: reading password: %v\n", err)
			return 1
		}
	}

	if err := createAdmin(ctx, cfg, *name, *email, pw, stdout); err != nil {
		fmt.Fprintf(stderr, "create-admin: %v\n", err)
		return 1
	}
	return 0
}

func createAdmin(ctx context.Context, cfg *config.Config, name, email, password string, stdout io.Writer) error {
	logger := log.New(log.Config{Level: log.ParseLevel("warn"), Format: cfg.LogFormat, Writer: io.Discard})
	cfg.AMQPURL = ""
	res := cli.InitBackend(ctx, logger, cfg)
	defer res.Cleanup()

	u, created, err := res.Accounts.EnsureAdmin(ctx, name, email, password)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(stdout, "Created admin %s (%s)\n", u.Email, u.ID)
	} else {
		fmt.Fprintf(stdout, "Promoted %s (%s) to admin\n", u.Email, u.ID)
	}
	return nil
}

func readPassword(stdin io.Reader, stderr io.Writer) (string, error) {
	fmt.Fprint(stderr, "Password: ")
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(stderr)
		return string(b), err
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
