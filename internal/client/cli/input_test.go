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

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  hello world \n"), "Name?", &out)
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
	require.Error(t, err)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), pw)
	assert.Equal(t, "Enter password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(&out)
	require.Error(t, err)
}

func TestGetChoice(t *testing.T) {
	options := []string{"login", "signup", "cancel"}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "full word", input: "signup\n", want: "signup"},
		{name: "prefix", input: "l\n", want: "login"},
		{name: "case insensitive", input: "CAN\n", want: "cancel"},
		{name: "empty", input: "\n", want: ""},
		{name: "unknown", input: "register\n", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetChoice(rdr(tc.input), "Sign in", options, &out)
			if tc.wantErr {
				require.ErrorIs(t, err, errUnknownChoice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Contains(t, out.String(), "[login/signup/cancel]")
		})
	}
}

func TestGetChoice_Ambiguous(t *testing.T) {
	var out bytes.Buffer
	_, err := GetChoice(rdr("s\n"), "Pick", []string{"show", "signup"}, &out)
	require.ErrorIs(t, err, errUnknownChoice)
}
