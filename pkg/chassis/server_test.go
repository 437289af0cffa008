package chassis

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "ok")
	})
}

func serve(t *testing.T, cfg Config) (string, context.CancelFunc, <-chan error) {
	t.Helper()
	srv, err := New(cfg)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	return ln.Addr().String(), cancel, done
}

func TestServe_PlainHTTP(t *testing.T) {
	addr, cancel, done := serve(t, Config{Handler: okHandler()})

	resp, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, "ok", string(body))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_DevTLS(t *testing.T) {
	addr, cancel, done := serve(t, Config{Handler: okHandler(), TLSMode: TLSDev})
	defer func() {
		cancel()
		<-done
	}()

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}}
	resp, err := client.Get("https://" + addr + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, resp.TLS)
	assert.Equal(t, uint16(tls.VersionTLS13), resp.TLS.Version)
}

func TestTLSConfig_Modes(t *testing.T) {
	cfg, err := TLSConfig("", "", "")
	require.NoError(t, err)
	assert.Nil(t, cfg)

	cfg, err = TLSConfig(TLSOff, "", "")
	require.NoError(t, err)
	assert.Nil(t, cfg)

	_, err = TLSConfig(TLSFiles, "", "")
	assert.Error(t, err)

	_, err = TLSConfig(TLSFiles, "/nonexistent/cert.pem", "/nonexistent/key.pem")
	assert.Error(t, err)

	_, err = TLSConfig("quic", "", "")
	assert.Error(t, err)
}

func TestNew_NilHandler(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestServe_RecoversAndCompresses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })
	mux.HandleFunc("/json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"records":[]}`)
	})
	addr, cancel, done := serve(t, Config{Handler: mux, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	defer func() {
		cancel()
		<-done
	}()

	resp, err := http.Get("http://" + addr + "/panic")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err = http.Get("http://" + addr + "/json")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, resp.Uncompressed, "gzip applied and transparently decoded")
	assert.Equal(t, `{"records":[]}`, string(body))
}
