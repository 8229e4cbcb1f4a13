package dispatch

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/account"
	"github.com/dmitrijs2005/walletkeeper/internal/audit"
	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/user"
	"golang.org/x/time/rate"
)

// Method names.
const (
	MethodExists      = "Account.exists"
	MethodInitialized = "Account.initialized"
	MethodLogin       = "Account.login"
	MethodLogout      = "Account.logout"
	MethodList        = "Account.list"
	MethodAdd         = "Account.add"
	MethodHistory     = "Account.history"

	MethodSignupStart      = "Signup.start"
	MethodSignupPassphrase = "Signup.passphrase"
	MethodSignupMnemonic   = "Signup.mnemonic"
	MethodSignupTotp       = "Signup.totp"
	MethodSignupVerify     = "Signup.verify"
	MethodSignupBuild      = "Signup.build"
	MethodSignupFinish     = "Signup.finish"
)

// Store is the user store surface the dispatcher drives.
type Store interface {
	Exists(ctx context.Context) (bool, error)
	Bootstrap(ctx context.Context) (bool, error)
	SignupStart(ctx context.Context) error
	SignupPassphrase(ctx context.Context) (string, error)
	SignupMnemonic(ctx context.Context) (string, error)
	SignupTotp(ctx context.Context) (string, error)
	SignupVerify(ctx context.Context, code string) (bool, error)
	SignupBuild(ctx context.Context) (*account.View, error)
	SignupFinish(ctx context.Context) error
	Login(ctx context.Context, creds *user.Credentials) (*account.View, error)
	Logout(ctx context.Context) error
	ListAccounts(ctx context.Context) ([]account.View, error)
	AddAccount(ctx context.Context, phrase, passphrase []byte) (*account.View, error)
	History(ctx context.Context, limit int) ([]audit.Event, error)
}

type handler func(ctx context.Context, params json.RawMessage) (any, error)

// Options tune the dispatcher.
type Options struct {
	// LoginInterval is the refill period of the login token bucket. Zero
	// disables throttling.
	LoginInterval time.Duration
	LoginBurst    int
}

// Dispatcher routes requests to the store.
type Dispatcher struct {
	store   Store
	log     logging.Logger
	limiter *rate.Limiter
	methods map[string]handler
}

// New builds a Dispatcher over store.
func New(store Store, opts Options, log logging.Logger) *Dispatcher {
	d := &Dispatcher{
		store: store,
		log:   log.With("module", "dispatch"),
	}
	if opts.LoginInterval > 0 {
		burst := opts.LoginBurst
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Every(opts.LoginInterval), burst)
	}

	d.methods = map[string]handler{
		MethodExists: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return store.Exists(ctx)
		},
		MethodInitialized: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return store.Bootstrap(ctx)
		},
		MethodSignupStart: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return nil, store.SignupStart(ctx)
		},
		MethodSignupPassphrase: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return store.SignupPassphrase(ctx)
		},
		MethodSignupMnemonic: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return store.SignupMnemonic(ctx)
		},
		MethodSignupTotp: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return store.SignupTotp(ctx)
		},
		MethodSignupVerify: func(ctx context.Context, params json.RawMessage) (any, error) {
			token, err := decodeString(params, "token")
			if err != nil {
				return nil, err
			}
			return store.SignupVerify(ctx, token)
		},
		MethodSignupBuild: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return store.SignupBuild(ctx)
		},
		MethodSignupFinish: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return nil, store.SignupFinish(ctx)
		},
		MethodLogin: d.login,
		MethodLogout: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return nil, store.Logout(ctx)
		},
		MethodList: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return store.ListAccounts(ctx)
		},
		MethodAdd:     d.add,
		MethodHistory: d.history,
	}
	return d
}

// Methods lists the handled method names.
func (d *Dispatcher) Methods() []string {
	out := make([]string, 0, len(d.methods))
	for m := range d.methods {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Handle runs req. It returns nil for unknown methods and notifications.
func (d *Dispatcher) Handle(ctx context.Context, req *Request) *Response {
	h, ok := d.methods[req.Method]
	if !ok {
		d.log.Debug(ctx, "method not handled", "method", req.Method)
		return nil
	}

	result, err := d.call(ctx, h, req)

	if req.IsNotification() {
		return nil
	}
	if err != nil {
		d.log.Debug(ctx, "request failed", "method", req.Method, "kind", common.KindOf(err))
		return errorResponse(req.ID, err)
	}
	return resultResponse(req.ID, result)
}

func (d *Dispatcher) call(ctx context.Context, h handler, req *Request) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			d.log.Error(ctx, "handler panic", "method", req.Method, "panic", p)
			result, err = nil, common.Errorf(common.KindInternal, "internal error in %s", req.Method)
		}
	}()
	return h(ctx, req.Params)
}

// HandleMessage decodes a raw request and encodes the response. A nil
// slice with a nil error means "no response".
func (d *Dispatcher) HandleMessage(ctx context.Context, msg []byte) ([]byte, error) {
	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		return json.Marshal(&Response{
			JSONRPC: Version,
			Error:   &RPCError{Code: CodeParseError, Message: "parse error: " + err.Error()},
		})
	}
	if req.JSONRPC != Version || req.Method == "" {
		return json.Marshal(&Response{
			JSONRPC: Version,
			ID:      req.ID,
			Error:   &RPCError{Code: CodeInvalidRequest, Message: "invalid request"},
		})
	}

	resp := d.Handle(ctx, &req)
	if resp == nil {
		return nil, nil
	}
	return json.Marshal(resp)
}

func (d *Dispatcher) login(ctx context.Context, params json.RawMessage) (any, error) {
	if d.limiter != nil && !d.limiter.Allow() {
		return nil, common.ErrRateLimited
	}

	var p LoginParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	var creds *user.Credentials
	if p.Passphrase != "" {
		creds = &user.Credentials{Passphrase: []byte(p.Passphrase), Token: p.Token}
		defer creds.Wipe()
	}

	view, err := d.store.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if view == nil {
		// cancelled prompt
		return nil, nil
	}
	return view, nil
}

func (d *Dispatcher) add(ctx context.Context, params json.RawMessage) (any, error) {
	var p AddParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	phrase, pass := []byte(p.Mnemonic), []byte(p.Passphrase)
	defer common.WipeByteArray(phrase)
	defer common.WipeByteArray(pass)

	return d.store.AddAccount(ctx, phrase, pass)
}

func (d *Dispatcher) history(ctx context.Context, params json.RawMessage) (any, error) {
	p := HistoryParams{Limit: 20}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return d.store.History(ctx, p.Limit)
}
