package identity

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// GoogleCertsURL — публичные x509-сертификаты, которыми подписываются Firebase ID-токены.
const GoogleCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const (
	defaultCertsTTL = time.Hour
	// minCertsRefetch ограничивает внеплановые загрузки при неизвестном kid.
	minCertsRefetch = time.Minute
)

type firebaseClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// FirebaseVerifier проверяет RS256 ID-токены Firebase Authentication.
type FirebaseVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client

	mu      sync.Mutex
	keys      map[string]*rsa.PublicKey
	expires   time.Time
	fetchedAt time.Time
	now       func() time.Time
}

type FirebaseOption func(*FirebaseVerifier)

// WithCertsURL подменяет адрес сертификатов (для тестов).
func WithCertsURL(url string) FirebaseOption {
	return func(v *FirebaseVerifier) { v.certsURL = url }
}

func WithHTTPClient(client *http.Client) FirebaseOption {
	return func(v *FirebaseVerifier) { v.client = client }
}

func WithClock(now func() time.Time) FirebaseOption {
	return func(v *FirebaseVerifier) { v.now = now }
}

func NewFirebaseVerifier(projectID string, opts ...FirebaseOption) *FirebaseVerifier {
	v := &FirebaseVerifier{
		projectID: projectID,
		certsURL:  GoogleCertsURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *FirebaseVerifier) Ready() bool {
	return v != nil && v.projectID != ""
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if !v.Ready() {
		return Identity{}, ErrNotConfigured
	}

	claims := &firebaseClaims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodRS256.Alg()}}
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid header")
		}
		return v.key(ctx, kid)
	})
	if errors.Is(err, ErrCertsUnavailable) {
		return Identity{}, err
	}
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	issuer := "https://securetoken.google.com/" + v.projectID
	switch {
	case !claims.VerifyAudience(v.projectID, true):
		return Identity{}, fmt.Errorf("%w: unexpected audience", ErrInvalidToken)
	case !claims.VerifyIssuer(issuer, true):
		return Identity{}, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	case claims.Subject == "":
		return Identity{}, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	case claims.IssuedAt == nil || claims.IssuedAt.After(v.now()):
		return Identity{}, fmt.Errorf("%w: invalid issued-at", ErrInvalidToken)
	}

	return Identity{UID: claims.Subject, Email: claims.Email, DisplayName: claims.Name}, nil
}

// key возвращает публичный ключ по kid. Сертификаты перечитываются по
// истечении max-age, а при неизвестном kid не чаще раза в minCertsRefetch.
func (v *FirebaseVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	fresh := now.Before(v.expires)
	if key, ok := v.keys[kid]; ok && fresh {
		return key, nil
	}
	if fresh && now.Sub(v.fetchedAt) < minCertsRefetch {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}

	if err := v.refresh(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertsUnavailable, err)
	}
	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return key, nil
}

func (v *FirebaseVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return fmt.Errorf("build certs request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch signing certs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch signing certs: status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("decode signing certs: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pem := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return fmt.Errorf("parse signing cert %q: %w", kid, err)
		}
		keys[kid] = key
	}

	v.keys = keys
	v.fetchedAt = v.now()
	v.expires = v.fetchedAt.Add(maxAge(resp.Header.Get("Cache-Control")))
	return nil
}

func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		if value, ok := strings.CutPrefix(directive, "max-age="); ok {
			if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
				return time.Duration(seconds) * time.Second
			}
		}
	}
	return defaultCertsTTL
}
