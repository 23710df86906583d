package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "admin.db"))
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("BCRYPT_COST", "4")
}

func noPrompt(t *testing.T) passwordReader {
	return func(io.Reader, io.Writer) (string, error) {
		t.Fatal("password prompt not expected")
		return "", nil
	}
}

func TestRunCreatesThenPromotes(t *testing.T) {
	setupEnv(t)
	ctx := context.Background()

	var out, errOut bytes.Buffer
	code := run(ctx, []string{"-email", "root@example.com", "-password", "secret123"}, nil, &out, &errOut, noPrompt(t))
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Created admin root@example.com")

	out.Reset()
	code = run(ctx, []string{"-email", "root@example.com", "-password", "secret123"}, nil, &out, &errOut, noPrompt(t))
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Promoted root@example.com")
}

func TestRunPromptsForPassword(t *testing.T) {
	setupEnv(t)
	prompted := false
	prompt := func(io.Reader, io.Writer) (string, error) {
		prompted = true
		return "secret123", nil
	}

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-email", "root@example.com"}, nil, &out, &errOut, prompt)
	assert.Equal(t, 0, code, errOut.String())
	assert.True(t, prompted)
}

func TestRunErrors(t *testing.T) {
	setupEnv(t)
	ctx := context.Background()

	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run(ctx, nil, nil, &out, &errOut, noPrompt(t)))
	assert.Contains(t, errOut.String(), "-email is required")

	errOut.Reset()
	assert.Equal(t, 1, run(ctx, []string{"-email", "root@example.com", "-password", "123"}, nil, &out, &errOut, noPrompt(t)))
	assert.Contains(t, errOut.String(), "password")

	errOut.Reset()
	failing := func(io.Reader, io.Writer) (string, error) { return "", errors.New("no tty") }
	assert.Equal(t, 1, run(ctx, []string{"-email", "root@example.com"}, nil, &out, &errOut, failing))
	assert.Contains(t, errOut.String(), "no tty")
}

func TestReadPasswordFromPipe(t *testing.T) {
	var stderr bytes.Buffer
	pw, err := readPassword(strings.NewReader("hunter22\n"), &stderr)
	require.NoError(t, err)
	assert.Equal(t, "hunter22", pw)
	assert.Equal(t, "Password: ", stderr.String())

	pw, err = readPassword(strings.NewReader("no-newline"), &stderr)
	require.NoError(t, err)
	assert.Equal(t, "no-newline", pw)

	_, err = readPassword(strings.NewReader(""), &stderr)
	assert.Error(t, err)
}
