package postal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/chouhyo/internal/domain"
	"github.com/jhoicas/chouhyo/internal/infrastructure/postal"
	"github.com/jhoicas/chouhyo/pkg/logger"
)

const okBody = `{"message":null,"results":[{"address1":"東京都","address2":"千代田区","address3":"千代田","kana1":"ﾄｳｷｮｳﾄ","prefcode":"13","zipcode":"1000001"}],"status":200}`

func newServer(t *testing.T, handler http.HandlerFunc) *postal.ZipCloudClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return postal.NewZipCloudClient(srv.URL, 2*time.Second, logger.Nop())
}

func TestLookup_DireccionCompleta(t *testing.T) {
	gotZip := make(chan string, 1)
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotZip <- r.URL.Query().Get("zipcode")
		_, _ = w.Write([]byte(okBody))
	})

	addr, err := c.Lookup(context.Background(), "１００－０００１")
	require.NoError(t, err)
	assert.Equal(t, "東京都千代田区千代田", addr)
	assert.Equal(t, "1000001", <-gotZip, "el código se normaliza antes de consultar")
}

func TestLookup_SinResultados(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":null,"results":null,"status":200}`))
	})
	_, err := c.Lookup(context.Background(), "9999999")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLookup_CodigoInvalidoNoLlamaAlServicio(t *testing.T) {
	var calls atomic.Int32
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })

	_, err := c.Lookup(context.Background(), "12345")
	assert.True(t, errors.Is(err, domain.ErrInvalidPostalCode))
	assert.Zero(t, calls.Load())
}

func TestLookup_ErrorDelServicio(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"必須パラメータが指定されていません。","results":null,"status":400}`))
	})
	_, err := c.Lookup(context.Background(), "1000001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestLookup_AgrupaConsultasSimultaneas(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(okBody))
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addr, err := c.Lookup(context.Background(), "1000001")
			assert.NoError(t, err)
			assert.Equal(t, "東京都千代田区千代田", addr)
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "cinco consultas del mismo código → una llamada")
}

func TestLookup_Cancelacion(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Lookup(ctx, "1000001")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeZip(t *testing.T) {
	got, err := postal.NormalizeZip("〒100-0001")
	require.NoError(t, err)
	assert.Equal(t, "1000001", got)
}
