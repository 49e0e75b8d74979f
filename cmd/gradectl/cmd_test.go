package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/gradebook-service/internal/testutil"
	"github.com/SAP-F-2025/gradebook-service/pkg/client"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	srv := testutil.NewServer(t)
	out := &bytes.Buffer{}
	return &commandLine{
		api:     client.New(srv.URL),
		session: client.NewSession(client.NewMemoryTokenStore()),
		out:     out,
	}, out
}

func withPassword(t *testing.T, password string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_usage(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "login without username", args: []string{"login"}, wantErr: errHelp},
		{name: "grade-rm without id", args: []string{"grade-rm"}, wantErr: errHelp},
		{name: "grade-add without value", args: []string{"grade-add"}, wantErr: errHelp},
		{name: "roles without username", args: []string{"roles"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(context.Background(), append([]string{"gradectl"}, tt.args...))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func Test_commandLine_studentFlow(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()
	run := func(args ...string) error {
		return cli.run(ctx, append([]string{"gradectl"}, args...))
	}

	require.NoError(t, run("whoami"))
	assert.Contains(t, out.String(), "Not signed in")

	withPassword(t, "pw123456")
	require.NoError(t, run("register", "-username", "alice"))
	assert.Contains(t, out.String(), "Registered and signed in as alice")

	out.Reset()
	require.NoError(t, run("whoami"))
	assert.Contains(t, out.String(), "alice [ROLE_USER] admin=false token=valid")

	out.Reset()
	require.NoError(t, run("grade-add", "-value", "5.5", "-comment", "oral"))
	assert.Contains(t, out.String(), "(5.50 x 1.00)")

	out.Reset()
	require.NoError(t, run("grades", "-own", "-sort", "value", "-desc"))
	assert.Contains(t, out.String(), "alice")
	assert.Contains(t, out.String(), "1 grades")

	// admin-only listing is refused for a student
	assert.Error(t, run("users"))

	require.NoError(t, run("logout"))
	assert.Error(t, run("grades"))
}

func Test_commandLine_adminRoles(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()
	run := func(args ...string) error {
		return cli.run(ctx, append([]string{"gradectl"}, args...))
	}

	withPassword(t, "pw123456")
	require.NoError(t, run("register", "-username", "bob"))

	withPassword(t, testutil.AdminPassword)
	require.NoError(t, run("login", "-username", testutil.AdminUsername))

	out.Reset()
	require.NoError(t, run("roles", "-username", "bob", "-set", "ROLE_ADMIN,ROLE_USER"))
	assert.Contains(t, out.String(), "bob: ROLE_ADMIN,ROLE_USER")

	out.Reset()
	require.NoError(t, run("users", "-q", "bo"))
	assert.Contains(t, out.String(), "bob")
	assert.NotContains(t, out.String(), "admin ")
}
