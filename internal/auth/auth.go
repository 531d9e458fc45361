// Package auth 管理 Google OAuth2 凭据：client_secret.json + 缓存的 token.json。
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// SpreadsheetsReadonlyScope 只读访问 Google Sheets
const SpreadsheetsReadonlyScope = "https://www.googleapis.com/auth/spreadsheets.readonly"

var (
	// ErrNoClientSecret client_secret.json 不存在
	ErrNoClientSecret = errors.New("client secret not found")
	// ErrNoToken 尚未授权（token.json 不存在）
	ErrNoToken = errors.New("token not found")
)

// Config 读取 client_secret.json
func Config(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: arquivo %s não encontrado", ErrNoClientSecret, credentialsFile)
		}
		return nil, fmt.Errorf("ler %s: %w", credentialsFile, err)
	}
	cfg, err := google.ConfigFromJSON(b, SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("credenciais inválidas em %s: %w", credentialsFile, err)
	}
	return cfg, nil
}

// LoadToken 读取缓存的 token
func LoadToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: arquivo %s não encontrado, execute 'importacao auth'", ErrNoToken, path)
		}
		return nil, fmt.Errorf("ler %s: %w", path, err)
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(b, tok); err != nil {
		return nil, fmt.Errorf("token inválido em %s: %w", path, err)
	}
	return tok, nil
}

// SaveToken 写入 token（先写临时文件再重命名）
func SaveToken(path string, tok *oauth2.Token) error {
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// persistingTokenSource 刷新后的 token 写回缓存文件
type persistingTokenSource struct {
	mu   sync.Mutex
	base oauth2.TokenSource
	path string
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		if err := SaveToken(p.path, tok); err != nil {
			log.Printf("[auth] falha ao salvar token atualizado: %v", err)
		}
	}
	return tok, nil
}

// Client 基于缓存 token 的 HTTP 客户端，token 过期时自动刷新并写回
func Client(ctx context.Context, cfg *oauth2.Config, tokenFile string) (*http.Client, error) {
	tok, err := LoadToken(tokenFile)
	if err != nil {
		return nil, err
	}
	ts := &persistingTokenSource{
		base: cfg.TokenSource(ctx, tok),
		path: tokenFile,
		last: tok.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, ts)), nil
}

// Login 本地回环授权流程：在 127.0.0.1 随机端口等待回调，换取 token 并保存
func Login(ctx context.Context, cfg *oauth2.Config, tokenFile string, openURL func(string) error) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("abrir porta local: %w", err)
	}
	defer ln.Close()

	flowCfg := *cfg
	flowCfg.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())
	state := uuid.NewString()

	type callback struct {
		code string
		err  error
	}
	done := make(chan callback, 1)
	notify := func(cb callback) {
		select {
		case done <- cb:
		default:
		}
	}

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state inválido", http.StatusBadRequest)
			return
		}
		if e := q.Get("error"); e != "" {
			fmt.Fprintln(w, "Autorização negada. Você pode fechar esta janela.")
			notify(callback{err: fmt.Errorf("autorização negada: %s", e)})
			return
		}
		fmt.Fprintln(w, "Autorização concluída. Você pode fechar esta janela.")
		notify(callback{code: q.Get("code")})
	})}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	authURL := flowCfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	log.Printf("[auth] abra no navegador: %s", authURL)
	if openURL != nil {
		if err := openURL(authURL); err != nil {
			log.Printf("[auth] não foi possível abrir o navegador: %v", err)
		}
	}

	var cb callback
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case cb = <-done:
	}
	if cb.err != nil {
		return nil, cb.err
	}

	tok, err := flowCfg.Exchange(ctx, cb.code)
	if err != nil {
		return nil, fmt.Errorf("trocar código por token: %w", err)
	}
	if err := SaveToken(tokenFile, tok); err != nil {
		return nil, fmt.Errorf("salvar token: %w", err)
	}
	return tok, nil
}
