//go:build linux || darwin
// +build linux darwin

package facade_test

import (
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-udp/control"
	"github.com/momentics/hioload-udp/facade"
	"github.com/momentics/hioload-udp/loop"
)

func TestEchoServerEndToEnd(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	cfg := facade.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"

	srv, err := facade.New(cfg, loop.WithLogger(log))
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	conn, err := net.Dial("udp4", srv.LocalAddr())
	require.NoError(t, err)
	defer conn.Close()

	payload := []byte("hello, loop")
	_, err = conn.Write(payload)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1500)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, payload, buf[:n])

	require.NoError(t, srv.Stop())
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}

	snap := srv.Metrics().GetSnapshot()
	assert.GreaterOrEqual(t, snap[control.MetricReceived], int64(1))
}

func TestStopWithoutRunReleasesResources(t *testing.T) {
	cfg := facade.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	srv, err := facade.New(cfg)
	require.NoError(t, err)
	require.NoError(t, srv.Stop())
}

func TestBadAddressFailsAtSetup(t *testing.T) {
	cfg := facade.DefaultConfig()
	cfg.ListenAddr = "256.0.0.1:notaport"
	_, err := facade.New(cfg)
	require.Error(t, err)
}
