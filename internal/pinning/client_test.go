// SPDX-License-Identifier: MPL-2.0

package pinning

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/mintkit/mintkit/internal/retry"
	"github.com/mintkit/mintkit/internal/testutil"
)

const testToken = "test-jwt"

func newTestClient(t *testing.T, srv *httptest.Server) (*Client, *testutil.FakeClock) {
	t.Helper()
	clk := testutil.NewAutoClock(time.Time{})
	c := NewClient(testToken,
		WithHTTPClient(srv.Client()),
		WithEndpoints(Endpoints{PinFile: srv.URL + "/pinning/pinFileToIPFS", PinJSON: srv.URL + "/pinning/pinJSONToIPFS"}),
		WithRetry(retry.New(retry.WithClock(clk)), DefaultPolicy),
	)
	return c, clk
}

func pinResponse(hash string) string {
	return fmt.Sprintf(`{"IpfsHash":%q,"PinSize":1234,"Timestamp":"2024-01-01T00:00:00Z"}`, hash)
}

func TestClient_PinFile(t *testing.T) {
	t.Parallel()

	hash := sampleCID(t, "image", true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "resized_logo.png", hdr.Filename)
		assert.Equal(t, "pixels", string(body))

		fmt.Fprint(w, pinResponse(hash))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)
	path := testutil.WriteFile(t, t.TempDir(), "resized_logo.png", []byte("pixels"))

	res, err := c.PinFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, hash, res.Hash)
	assert.Equal(t, DefaultGateway+hash, res.GatewayURL)
	assert.Equal(t, int64(1234), res.Size)
}

func TestClient_PinJSON_Envelope(t *testing.T) {
	t.Parallel()

	hash := sampleCID(t, "meta", true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinJSONToIPFS", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		assert.Equal(t, int64(1), gjson.GetBytes(raw, "pinataOptions.cidVersion").Int())
		assert.Equal(t, "tok_metadata.json", gjson.GetBytes(raw, "pinataMetadata.name").String())
		assert.Equal(t, "Tok", gjson.GetBytes(raw, "pinataContent.name").String())
		assert.Equal(t, "https://img", gjson.GetBytes(raw, "pinataContent.image").String())

		fmt.Fprint(w, pinResponse(hash))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)
	path := testutil.WriteFile(t, t.TempDir(), "tok_metadata.json",
		[]byte("{\n    \"name\": \"Tok\",\n    \"image\": \"https://img\"\n}\n"))

	res, err := c.PinJSON(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://"+hash, res.ProtocolURL)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	hash := sampleCID(t, "retry", true)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream busy", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, pinResponse(hash))
	}))
	defer srv.Close()

	c, clk := newTestClient(t, srv)
	path := testutil.WriteFile(t, t.TempDir(), "a.png", []byte("x"))

	res, err := c.PinFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, hash, res.Hash)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, clk.Waits())
}

func TestClient_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "still down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)
	path := testutil.WriteFile(t, t.TempDir(), "a.png", []byte("x"))

	_, err := c.PinFile(context.Background(), path)
	require.ErrorIs(t, err, retry.ErrTerminal)
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "still down")
	assert.Equal(t, int32(DefaultPolicy.MaxAttempts), calls.Load())
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"Invalid authentication"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)
	path := testutil.WriteFile(t, t.TempDir(), "a.json", []byte(`{"name":"x"}`))

	_, err := c.PinJSON(context.Background(), path)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "Invalid authentication")
	assert.NotErrorIs(t, err, retry.ErrTerminal)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_MissingHashInResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)
	path := testutil.WriteFile(t, t.TempDir(), "a.png", []byte("x"))

	_, err := c.PinFile(context.Background(), path)
	require.ErrorIs(t, err, ErrInvalidHash)
}

func TestClient_LocalErrors(t *testing.T) {
	t.Parallel()

	c := NewClient(testToken)
	_, err := c.PinFile(context.Background(), "/does/not/exist.png")
	require.ErrorIs(t, err, ErrNotFound)

	path := testutil.WriteFile(t, t.TempDir(), "bad.json", []byte("{nope"))
	_, err = c.PinJSON(context.Background(), path)
	require.Error(t, err)

	noToken := NewClient("")
	good := testutil.WriteFile(t, t.TempDir(), "a.png", []byte("x"))
	_, err = noToken.PinFile(context.Background(), good)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestJSONPayload_KeepsContentOrder(t *testing.T) {
	t.Parallel()

	payload, err := JSONPayload("m.json", []byte(`{"name":"A","symbol":"B","description":"C","image":"U"}`))
	require.NoError(t, err)

	var keys []string
	gjson.GetBytes(payload, "pinataContent").ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{"name", "symbol", "description", "image"}, keys)
}
