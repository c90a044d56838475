package sshprobe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	hwerrors "github.com/tonhe/hostwatch/internal/errors"
)

// Target is what to authenticate against.
type Target struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Address returns host:port.
func (t Target) Address() string {
	port := t.Port
	if port <= 0 {
		port = 22
	}
	return net.JoinHostPort(t.Host, strconv.Itoa(port))
}

// Result describes a successful handshake.
type Result struct {
	Address       string
	ServerVersion string
	HostKey       string // SHA256 fingerprint
	Elapsed       time.Duration
}

// Probe connects to t and authenticates with its password. The host key is
// recorded but not verified; the server performs the real collection.
func Probe(ctx context.Context, t Target, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	addr := t.Address()
	start := time.Now()

	var hostKey string
	cfg := &ssh.ClientConfig{
		User: t.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(t.Password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = t.Password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: func(_ string, _ net.Addr, key ssh.PublicKey) error {
			hostKey = ssh.FingerprintSHA256(key)
			return nil
		},
		Timeout: timeout,
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Result{}, &hwerrors.Error{
			Code:       hwerrors.ErrNetwork,
			Message:    fmt.Sprintf("can't reach %s", addr),
			Suggestion: "Check the address and port, and that sshd is running",
			Cause:      err,
		}
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(timeout))
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		conn.Close()
		return Result{}, &hwerrors.Error{
			Code:       hwerrors.ErrNetwork,
			Message:    fmt.Sprintf("SSH handshake with %s failed", addr),
			Suggestion: "Check the username and password",
			Cause:      err,
		}
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	return Result{
		Address:       addr,
		ServerVersion: string(sshConn.ServerVersion()),
		HostKey:       hostKey,
		Elapsed:       time.Since(start),
	}, nil
}
