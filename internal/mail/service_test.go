// File: internal/mail/service_test.go
package mail

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"woodcraft_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSender(t *testing.T, addr string) Sender {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	return NewSMTPSender(&config.Config{SMTPHost: host, SMTPPort: port}, zap.NewNop())
}

// fakeSMTPServer speaks just enough of the protocol for a greet-and-quit
// session.
func fakeSMTPServer(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		fmt.Fprintf(conn, "220 mail.test ESMTP\r\n")
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if strings.HasPrefix(line, "QUIT") {
				fmt.Fprintf(conn, "221 bye\r\n")
				return
			}
			fmt.Fprintf(conn, "250 ok\r\n")
		}
	}()
	return ln
}

func TestPing_Succeeds(t *testing.T) {
	ln := fakeSMTPServer(t)
	sender := newTestSender(t, ln.Addr().String())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, sender.Ping(ctx))
}

func TestPing_UnreachableHostFails(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	sender := newTestSender(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, sender.Ping(ctx))
}

func TestPing_SilentServerHonorsContextDeadline(t *testing.T) {
	// A server that accepts the connection but never sends the 220 greeting.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		<-done
		conn.Close()
	}()

	sender := newTestSender(t, ln.Addr().String())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = sender.Ping(ctx)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Less(t, elapsed, 2*time.Second, "Ping must give up once the context deadline passes")
}
