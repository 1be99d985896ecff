package transport_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sessionlens/recorder/transport"
	"github.com/stretchr/testify/require"
)

func TestHTTPSink_PostsToCorrectEndpoints(t *testing.T) {
	var snapshotBody, mutationBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/snapshot":
			snapshotBody = body
		case "/mutations":
			mutationBody = body
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := transport.NewHTTPSink(srv.URL+"/snapshot", srv.URL+"/mutations", 2*time.Second)

	require.NoError(t, sink.SendSnapshot([]byte("snap")))
	require.NoError(t, sink.SendMutations([]byte("mut")))

	require.Equal(t, "snap", string(snapshotBody))
	require.Equal(t, "mut", string(mutationBody))
}

func TestHTTPSink_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := transport.NewHTTPSink(srv.URL, srv.URL, time.Second)
	require.Error(t, sink.SendSnapshot([]byte("x")))
}

func TestNopSink_NeverErrors(t *testing.T) {
	var s transport.SnapshotSink = transport.NopSink{}
	require.NoError(t, s.SendSnapshot([]byte("x")))
}
