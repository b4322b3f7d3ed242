package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/concept/clienterr"
	"xdao.co/concept/internal/testutil/tlstest"
	"xdao.co/concept/rpc"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "concept.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := LoadClient("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultAddress, cfg.Address)
	assert.False(t, cfg.TLS)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestLoadClient_Precedence(t *testing.T) {
	path := writeFile(t, "address: file:1\ntimeout: 5s\nmax_msg_bytes: 1024\n")
	t.Setenv("CONCEPT_ADDRESS", "env:2")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("address", "", "")
	fs.Duration("timeout", 0, "")
	require.NoError(t, fs.Parse([]string{"--timeout=7s"}))

	cfg, err := LoadClient(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "env:2", cfg.Address, "env beats file; unset flag does not override")
	assert.Equal(t, 7*time.Second, cfg.Timeout, "set flag beats file")
	assert.Equal(t, 1024, cfg.MaxMsgBytes)
}

func TestLoadClient_Invalid(t *testing.T) {
	_, err := LoadClient(writeFile(t, "root_ca: /x.pem\n"), nil)
	assert.ErrorContains(t, err, "root_ca requires tls")

	_, err = LoadClient(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestClient_ChannelFactory(t *testing.T) {
	f, err := Client{Address: "x:1"}.ChannelFactory()
	require.NoError(t, err)
	assert.IsType(t, rpc.PlainText{}, f)

	ca := tlstest.NewAuthority(t, t.TempDir())
	f, err = Client{Address: "x:1", TLS: true, RootCA: ca.CAFile()}.ChannelFactory()
	require.NoError(t, err)
	tlsFactory, ok := f.(*rpc.TLS)
	require.True(t, ok)
	assert.Equal(t, ca.CAFile(), tlsFactory.RootCA())

	_, err = Client{Address: "x:1", TLS: true, RootCA: filepath.Join(t.TempDir(), "nope.pem")}.ChannelFactory()
	assert.True(t, clienterr.IsKind(err, clienterr.KindConfiguration))
}

func TestLoadDaemon(t *testing.T) {
	cfg, err := LoadDaemon(writeFile(t, "listen: 0.0.0.0:9000\nlog_console: true\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.True(t, cfg.LogConsole)
	assert.False(t, cfg.TLS())

	_, err = LoadDaemon(writeFile(t, "tls_cert: /c.pem\n"), nil)
	assert.ErrorContains(t, err, "set together")
}
