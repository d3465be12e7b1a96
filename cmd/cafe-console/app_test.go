package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BearBump/PetCafe/config"
	consoleapi "github.com/BearBump/PetCafe/internal/api/console_api"
	"github.com/BearBump/PetCafe/internal/broker/messages"
	"github.com/BearBump/PetCafe/internal/cache/rediscache"
	apifake "github.com/BearBump/PetCafe/internal/integrations/cafeapi/fake"
	uploadfake "github.com/BearBump/PetCafe/internal/integrations/upload/fake"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/assignments"
	"github.com/BearBump/PetCafe/internal/services/cart"
	"github.com/BearBump/PetCafe/internal/services/checkout"
	"github.com/BearBump/PetCafe/internal/services/petgroups"
	"github.com/BearBump/PetCafe/internal/services/pets"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	msgs [][]byte
}

func (c fakeConsumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	for _, m := range c.msgs {
		if err := handler(nil, m); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func newTestAPI(t *testing.T) *consoleapi.ConsoleAPI {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := rediscache.New(mr.Addr())
	t.Cleanup(func() { _ = rc.Close() })

	backend := apifake.NewSeeded()
	store := cart.NewStore(rc, time.Hour, nil, "")
	return consoleapi.New(consoleapi.Deps{
		Pets:        pets.New(backend, uploadfake.New("")),
		Groups:      petgroups.New(backend, rc, 0),
		Cart:        store,
		Checkout:    checkout.New(backend, store, nil, checkout.Config{}),
		Assignments: assignments.New(nil),
		Catalog:     backend,
	})
}

func TestRunConsole_SwaggerAndRelay(t *testing.T) {
	dir := t.TempDir()
	sw := filepath.Join(dir, "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))

	api := newTestAPI(t)
	relayed := make(chan models.Cart, 1)
	unsubscribe := api.Cart.Subscribe("acc-1", func(c models.Cart) { relayed <- c })
	defer unsubscribe()

	msg, err := json.Marshal(messages.CartUpdated{
		AccountID: "acc-1",
		Origin:    "other-instance",
		Items:     []models.CartItem{{ID: "prd-latte", Name: "Cà phê sữa", Price: 35000, Quantity: 1}},
		Total:     35000,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan string, 1)
	opts := consoleOpts{
		httpAddr:    "127.0.0.1:0",
		swaggerPath: sw,
		cartTopic:   "cart.updated",
		orderTopic:  "order.updated",
		onListen:    func(addr string) { addrCh <- addr },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- runConsole(ctx, opts, api, fakeConsumer{msgs: [][]byte{[]byte("{broken"), msg}}, fakeConsumer{})
	}()

	addr := <-addrCh

	select {
	case c := <-relayed:
		require.Len(t, c.Items, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("cart.updated was not relayed")
	}

	resp, err := http.Get("http://" + addr + "/swagger.json")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "\"swagger\"")

	resp, err = http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("console did not stop")
	}
}

func TestRunConsole_SwaggerRequired(t *testing.T) {
	err := runConsole(context.Background(), consoleOpts{httpAddr: "127.0.0.1:0"}, newTestAPI(t), nil, nil)
	require.Error(t, err)

	err = runConsole(context.Background(), consoleOpts{httpAddr: "127.0.0.1:0", swaggerPath: "/nope/swagger.json"}, newTestAPI(t), nil, nil)
	require.Error(t, err)
}

func TestNewBackend_FallsBackToFake(t *testing.T) {
	b := newBackend(&config.Config{})
	_, ok := b.(*apifake.Backend)
	require.True(t, ok)

	b = newBackend(&config.Config{Cafe: config.CafeConfig{APIBaseURL: "http://api.local"}})
	_, ok = b.(*apifake.Backend)
	require.False(t, ok)

	_, ok = newUploader(&config.Config{}).(*uploadfake.Uploader)
	require.True(t, ok)
}
