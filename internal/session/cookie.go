package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
)

// CookieStore keeps the token inside the cookie, encrypted and authenticated
// with AES-256-GCM.  The key is derived from the configured session secret.
type CookieStore struct {
	opts Options
	aead cipher.AEAD
}

// NewCookieStore derives the AES key from secret.
func NewCookieStore(secret string, opts Options) (*CookieStore, error) {
	if len(secret) < 32 {
		return nil, errors.New("session: secret must be at least 32 bytes")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("session: cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("session: gcm: %w", err)
	}
	return &CookieStore{opts: opts, aead: aead}, nil
}

func (s *CookieStore) Get(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.opts.CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	tok, err := s.open(c.Value)
	if err != nil || tok == "" {
		return "", false
	}
	return tok, true
}

func (s *CookieStore) Set(w http.ResponseWriter, _ *http.Request, tok string) error {
	sealed, err := s.seal(tok)
	if err != nil {
		return err
	}
	http.SetCookie(w, s.opts.cookie(sealed))
	return nil
}

func (s *CookieStore) Clear(w http.ResponseWriter, _ *http.Request) error {
	http.SetCookie(w, s.opts.expired())
	return nil
}

// seal returns base64url(nonce || ciphertext).  The cookie name is bound as
// additional data so a value cannot be replayed under another cookie.
func (s *CookieStore) seal(plain string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	out := s.aead.Seal(nonce, nonce, []byte(plain), []byte(s.opts.CookieName))
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *CookieStore) open(value string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", err
	}
	n := s.aead.NonceSize()
	if len(raw) < n {
		return "", errors.New("session: short cookie")
	}
	plain, err := s.aead.Open(nil, raw[:n], raw[n:], []byte(s.opts.CookieName))
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
