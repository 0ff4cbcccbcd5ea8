package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubExec struct {
	calls map[string]int
	err   error
}

func newStubExec() *stubExec {
	return &stubExec{calls: map[string]int{}}
}

func (s *stubExec) Publish(ctx context.Context) error { s.calls["publish"]++; return s.err }
func (s *stubExec) Fetch(ctx context.Context, args []string) error {
	s.calls["fetch"]++
	return s.err
}
func (s *stubExec) Jobs(ctx context.Context) error { s.calls["jobs"]++; return s.err }
func (s *stubExec) Retry(ctx context.Context, args []string) error {
	s.calls["retry"]++
	return s.err
}
func (s *stubExec) Abandon(ctx context.Context, args []string) error {
	s.calls["abandon"]++
	return s.err
}
func (s *stubExec) Update(ctx context.Context, args []string) error {
	s.calls["update"]++
	return s.err
}
func (s *stubExec) Unlist(ctx context.Context, args []string) error {
	s.calls["unlist"]++
	return s.err
}
func (s *stubExec) Balance(ctx context.Context) error { s.calls["balance"]++; return s.err }
func (s *stubExec) Topup(ctx context.Context) error   { s.calls["topup"]++; return s.err }
func (s *stubExec) Epoch(ctx context.Context) error   { s.calls["epoch"]++; return s.err }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	old := printlnFn
	t.Cleanup(func() { printlnFn = old })

	var lines []string
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	return &lines
}

func TestREPLDispatch(t *testing.T) {
	out := captureOutput(t)
	stub := newStubExec()

	input := "publish\njobs\nretry j1\nbalance\ntopup\nepoch\nfetch b1 out.bin\nexit\n"
	runREPL(context.Background(), stub, bufio.NewScanner(strings.NewReader(input)))

	require.Equal(t, 1, stub.calls["publish"])
	require.Equal(t, 1, stub.calls["jobs"])
	require.Equal(t, 1, stub.calls["retry"])
	require.Equal(t, 1, stub.calls["balance"])
	require.Equal(t, 1, stub.calls["topup"])
	require.Equal(t, 1, stub.calls["epoch"])
	require.Equal(t, 1, stub.calls["fetch"])
	require.Contains(t, strings.Join(*out, ""), "Bye!")
}

func TestREPLUnknownCommand(t *testing.T) {
	out := captureOutput(t)
	stub := newStubExec()

	runREPL(context.Background(), stub, bufio.NewScanner(strings.NewReader("frobnicate\nexit\n")))

	require.Contains(t, strings.Join(*out, ""), "Unknown command: frobnicate")
	require.Empty(t, stub.calls)
}

func TestREPLReportsErrors(t *testing.T) {
	out := captureOutput(t)
	stub := newStubExec()
	stub.err = errors.New("relay unreachable")

	runREPL(context.Background(), stub, bufio.NewScanner(strings.NewReader("jobs\nexit\n")))

	require.Contains(t, strings.Join(*out, ""), "relay unreachable")
}

func TestREPLExitsOnEOF(t *testing.T) {
	captureOutput(t)
	stub := newStubExec()

	runREPL(context.Background(), stub, bufio.NewScanner(strings.NewReader("jobs\n")))

	require.Equal(t, 1, stub.calls["jobs"])
}
