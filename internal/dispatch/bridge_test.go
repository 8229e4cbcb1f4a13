package dispatch

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/account"
	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/cryptox"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/prompt"
	"github.com/dmitrijs2005/walletkeeper/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowHandler records the order in which requests run.
type slowHandler struct {
	mu    sync.Mutex
	order []string
}

func (h *slowHandler) Handle(_ context.Context, req *Request) *Response {
	time.Sleep(5 * time.Millisecond)
	h.mu.Lock()
	h.order = append(h.order, req.Method)
	h.mu.Unlock()
	if req.Method == "unknown" {
		return nil
	}
	return resultResponse(req.ID, req.Method)
}

func TestBridge_RunsInOrderOnOneWorker(t *testing.T) {
	h := &slowHandler{}
	b := NewBridge(h, 8, logging.Nop{})
	defer b.Close()

	var chans []<-chan Completion
	for _, m := range []string{"a", "b", "unknown", "c"} {
		req, err := NewRequest(1, m, nil)
		require.NoError(t, err)
		ch, err := b.Send(req)
		require.NoError(t, err)
		chans = append(chans, ch)
	}

	for i, ch := range chans {
		c := <-ch
		if i == 2 {
			assert.Nil(t, c.Response, "not handled")
			continue
		}
		require.NotNil(t, c.Response)
		assert.Nil(t, c.Response.Error)
	}
	assert.Equal(t, []string{"a", "b", "unknown", "c"}, h.order)
}

func TestBridge_Close(t *testing.T) {
	h := &slowHandler{}
	b := NewBridge(h, 4, logging.Nop{})

	req, err := NewRequest(1, "a", nil)
	require.NoError(t, err)
	ch, err := b.Send(req)
	require.NoError(t, err)

	b.Close()
	b.Close()

	// queued work finished before Close returned
	select {
	case c := <-ch:
		require.NotNil(t, c.Response)
	default:
		t.Fatal("queued request did not complete")
	}

	_, err = b.Send(req)
	require.ErrorIs(t, err, ErrBridgeClosed)
}

func TestBridgeCaller(t *testing.T) {
	b := NewBridge(&slowHandler{}, 1, logging.Nop{})
	defer b.Close()
	c := NewBridgeCaller(b)

	req, err := NewRequest(7, "a", nil)
	require.NoError(t, err)
	resp, err := c.Call(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("7"), resp.ID)

	req, err = NewRequest(8, "unknown", nil)
	require.NoError(t, err)
	_, err = c.Call(context.Background(), req)
	require.ErrorIs(t, err, ErrNotHandled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err = NewRequest(9, "a", nil)
	require.NoError(t, err)
	_, err = c.Call(ctx, req)
	if err != nil {
		require.ErrorIs(t, err, context.Canceled)
	}
}

func TestClient_OverBridgeWithStore(t *testing.T) {
	ctx := context.Background()
	store, err := user.New(user.Options{
		Root: t.TempDir(),
		KDF:  cryptox.KDFParams{Time: 1, MemoryKiB: 1024, Threads: 1},
	}, prompt.None{}, nil, logging.Nop{})
	require.NoError(t, err)

	b := NewBridge(New(store, Options{}, logging.Nop{}), 4, logging.Nop{})
	defer b.Close()
	cl := NewClient(NewBridgeCaller(b))

	var exists bool
	_, err = cl.Do(ctx, MethodExists, nil, &exists)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)

	var initialized bool
	_, err = cl.Do(ctx, MethodInitialized, nil, &initialized)
	require.NoError(t, err)
	assert.False(t, initialized)

	_, err = cl.Do(ctx, MethodSignupPassphrase, nil, nil)
	require.ErrorIs(t, err, common.ErrSignupNotStarted)

	_, err = cl.Do(ctx, MethodSignupStart, nil, nil)
	require.NoError(t, err)

	var pass string
	ok, err := cl.Do(ctx, MethodSignupPassphrase, nil, &pass)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = cl.Do(ctx, MethodSignupBuild, nil, nil)
	require.ErrorIs(t, err, common.ErrIncompleteBuilder)

	_, err = cl.Do(ctx, MethodSignupMnemonic, nil, nil)
	require.NoError(t, err)
	_, err = cl.Do(ctx, MethodSignupTotp, nil, nil)
	require.NoError(t, err)

	var view account.View
	ok, err = cl.Do(ctx, MethodSignupBuild, nil, &view)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, account.Primary, view.Kind)

	_, err = cl.Do(ctx, MethodSignupFinish, nil, nil)
	require.NoError(t, err)

	ok, err = cl.Do(ctx, MethodExists, nil, &exists)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, exists)

	_, err = cl.Do(ctx, MethodLogout, nil, nil)
	require.NoError(t, err)

	// prompts cancel with no operator attached
	ok, err = cl.Do(ctx, MethodLogin, nil, &view)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = cl.Do(ctx, MethodLogin, LoginParams{Passphrase: "wrong"}, &view)
	require.ErrorIs(t, err, common.ErrAuthenticationFailed)
	assert.False(t, ok)

	_, err = cl.Do(ctx, "Account.create", nil, nil)
	require.ErrorIs(t, err, ErrNotHandled)
}
