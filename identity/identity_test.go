package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testProject = "spikezone-test"

type certServer struct {
	*httptest.Server
	key  *rsa.PrivateKey
	hits atomic.Int32
}

func newCertServer(t *testing.T) *certServer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	cs := &certServer{key: key}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		w.Header().Set("Cache-Control", "public, max-age=600")
		json.NewEncoder(w).Encode(map[string]string{"kid-1": string(certPEM)})
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *certServer) sign(t *testing.T, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(cs.key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func firebaseClaimsFor(uid string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":   uid,
		"aud":   testProject,
		"iss":   "https://securetoken.google.com/" + testProject,
		"iat":   now.Add(-time.Minute).Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"email": "anna@example.com",
		"name":  "Anna",
	}
}

func TestFirebaseVerifier(t *testing.T) {
	cs := newCertServer(t)
	v := NewFirebaseVerifier(testProject, WithCertsURL(cs.URL))
	ctx := context.Background()

	got, err := v.Verify(ctx, cs.sign(t, "kid-1", firebaseClaimsFor("uid-1")))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	want := Identity{UID: "uid-1", Email: "anna@example.com", DisplayName: "Anna"}
	if got != want {
		t.Errorf("identity = %+v, want %+v", got, want)
	}

	tests := []struct {
		name   string
		kid    string
		mutate func(jwt.MapClaims)
	}{
		{"wrong audience", "kid-1", func(c jwt.MapClaims) { c["aud"] = "other-project" }},
		{"wrong issuer", "kid-1", func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" }},
		{"expired", "kid-1", func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Minute).Unix() }},
		{"empty subject", "kid-1", func(c jwt.MapClaims) { c["sub"] = "" }},
		{"unknown kid", "kid-2", func(jwt.MapClaims) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := firebaseClaimsFor("uid-1")
			tt.mutate(claims)
			_, err := v.Verify(ctx, cs.sign(t, tt.kid, claims))
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("error = %v, want ErrInvalidToken", err)
			}
		})
	}

	if _, err := v.Verify(ctx, "not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token error = %v", err)
	}
}

func TestFirebaseVerifierCachesCerts(t *testing.T) {
	cs := newCertServer(t)
	now := time.Now()
	v := NewFirebaseVerifier(testProject, WithCertsURL(cs.URL), WithClock(func() time.Time { return now }))
	ctx := context.Background()
	token := cs.sign(t, "kid-1", firebaseClaimsFor("uid-1"))

	for i := 0; i < 3; i++ {
		if _, err := v.Verify(ctx, token); err != nil {
			t.Fatalf("Verify #%d: %v", i, err)
		}
	}
	if hits := cs.hits.Load(); hits != 1 {
		t.Errorf("cert fetches = %d, want 1", hits)
	}

	now = now.Add(11 * time.Minute)
	if _, err := v.Verify(ctx, token); err != nil {
		t.Fatalf("Verify after expiry: %v", err)
	}
	if hits := cs.hits.Load(); hits != 2 {
		t.Errorf("cert fetches after max-age = %d, want 2", hits)
	}
}

func TestFirebaseVerifierThrottlesUnknownKid(t *testing.T) {
	cs := newCertServer(t)
	now := time.Now()
	v := NewFirebaseVerifier(testProject, WithCertsURL(cs.URL), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	bogus := cs.sign(t, "bogus", firebaseClaimsFor("uid-1"))
	for i := 0; i < 50; i++ {
		if _, err := v.Verify(ctx, bogus); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify #%d error = %v, want ErrInvalidToken", i, err)
		}
	}
	if hits := cs.hits.Load(); hits != 1 {
		t.Errorf("cert fetches for unknown kid = %d, want 1", hits)
	}

	now = now.Add(minCertsRefetch)
	v.Verify(ctx, bogus)
	if hits := cs.hits.Load(); hits != 2 {
		t.Errorf("cert fetches after refetch interval = %d, want 2", hits)
	}

	if _, err := v.Verify(ctx, cs.sign(t, "kid-1", firebaseClaimsFor("uid-1"))); err != nil {
		t.Fatalf("known kid: %v", err)
	}
	if hits := cs.hits.Load(); hits != 2 {
		t.Errorf("known kid triggered a fetch: %d", hits)
	}
}

func TestFirebaseVerifierCertsOutage(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(down.Close)

	cs := newCertServer(t)
	v := NewFirebaseVerifier(testProject, WithCertsURL(down.URL))

	_, err := v.Verify(context.Background(), cs.sign(t, "kid-1", firebaseClaimsFor("uid-1")))
	if !errors.Is(err, ErrCertsUnavailable) {
		t.Fatalf("error = %v, want ErrCertsUnavailable", err)
	}
	if errors.Is(err, ErrInvalidToken) {
		t.Errorf("outage reported as invalid token: %v", err)
	}
}

func TestFirebaseVerifierNotConfigured(t *testing.T) {
	v := NewFirebaseVerifier("")
	if v.Ready() {
		t.Fatal("verifier without project must not be ready")
	}
	if _, err := v.Verify(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

func TestHMACVerifier(t *testing.T) {
	v := NewHMACVerifier("dev-secret")
	ctx := context.Background()

	token, err := SignDevToken("dev-secret", Identity{UID: "uid-1", Email: "a@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("SignDevToken: %v", err)
	}
	got, err := v.Verify(ctx, token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.UID != "uid-1" || got.Email != "a@example.com" {
		t.Errorf("identity = %+v", got)
	}

	forged, _ := SignDevToken("other-secret", Identity{UID: "uid-1"}, time.Hour)
	if _, err := v.Verify(ctx, forged); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("forged token error = %v", err)
	}

	expired, _ := SignDevToken("dev-secret", Identity{UID: "uid-1"}, -time.Minute)
	if _, err := v.Verify(ctx, expired); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token error = %v", err)
	}
}

func TestMaxAge(t *testing.T) {
	tests := map[string]time.Duration{
		"public, max-age=19770, must-revalidate": 19770 * time.Second,
		"no-cache":                                defaultCertsTTL,
		"":                                        defaultCertsTTL,
		"max-age=abc":                             defaultCertsTTL,
	}
	for header, want := range tests {
		if got := maxAge(header); got != want {
			t.Errorf("maxAge(%q) = %v, want %v", header, got, want)
		}
	}
}

func TestDisabled(t *testing.T) {
	var v Verifier = Disabled{}
	if v.Ready() {
		t.Fatal("Disabled must not be ready")
	}
	if _, err := v.Verify(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v", err)
	}
}
