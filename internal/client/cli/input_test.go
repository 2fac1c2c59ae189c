package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func stubTerminal(t *testing.T, tty bool, pw func(int) ([]byte, error)) {
	t.Helper()
	oldTTY, oldPW := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = oldTTY, oldPW })
	isTerminal = func(int) bool { return tty }
	if pw != nil {
		readPassword = pw
	}
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	assert.Error(t, err)
}

func TestGetPassword_Terminal(t *testing.T) {
	stubTerminal(t, true, func(int) ([]byte, error) { return []byte("s3cret"), nil })

	var out bytes.Buffer
	pw, err := GetPassword(rdr("ignored\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
	assert.NotContains(t, out.String(), "s3cret")
}

func TestGetPassword_Error(t *testing.T) {
	stubTerminal(t, true, func(int) ([]byte, error) { return nil, errors.New("boom") })

	var out bytes.Buffer
	_, err := GetPassword(rdr(""), &out)
	require.Error(t, err)
}

func TestGetPassword_PipedInput(t *testing.T) {
	stubTerminal(t, false, func(int) ([]byte, error) {
		t.Fatal("terminal read on piped input")
		return nil, nil
	})

	var out bytes.Buffer
	pw, err := GetPassword(rdr("piped\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "piped", pw)
}

func TestGetChoice_RepromptsUntilValid(t *testing.T) {
	var out bytes.Buffer
	got, err := GetChoice(rdr("root\nADMIN\n"), "Role", []string{"user", "admin"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "admin", got)
	assert.Contains(t, out.String(), "Please choose one of: user, admin")
}

func TestGetConfirmation(t *testing.T) {
	tests := map[string]bool{
		"y\n":    true,
		"YES\n":  true,
		"n\n":    false,
		"\n":     false,
		"sure\n": false,
	}
	for in, want := range tests {
		var out bytes.Buffer
		got, err := GetConfirmation(rdr(in), "Delete?", &out)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, "Delete? [y/N] ", out.String())
	}
}
