package identity

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/healthsync/backend/internal/clock"
)

const (
	defaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
	defaultOobURL   = "https://identitytoolkit.googleapis.com/v1/accounts:sendOobCode"

	issuerPrefix = "https://securetoken.google.com/"

	// Fallback cert cache lifetime when the provider omits Cache-Control.
	defaultCertTTL = time.Hour
)

// firebaseVerifier validates RS256 ID tokens against the provider's rotating
// x509 signing certificates and relays account operations over its REST API.
type firebaseVerifier struct {
	projectID string
	apiKey    string
	client    *http.Client
	clk       clock.Clock

	certsURL string
	oobURL   string

	mu          sync.Mutex
	keys        map[string]*rsa.PublicKey
	keysExpires time.Time
}

func newFirebaseVerifier(projectID, apiKey string, client *http.Client, clk clock.Clock) *firebaseVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &firebaseVerifier{
		projectID: projectID,
		apiKey:    apiKey,
		client:    client,
		clk:       clk,
		certsURL:  defaultCertsURL,
		oobURL:    defaultOobURL,
	}
}

type idTokenClaims struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// Verify checks the token's signature against the provider certs and enforces
// issuer, audience and expiry for the configured project.
func (v *firebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	claims := &idTokenClaims{}
	parsed, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token header missing kid")
		}
		return v.signingKey(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuerPrefix+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithTimeFunc(v.clk.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidIdentityToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidIdentityToken
	}

	return &Identity{
		UID:           claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// SendPasswordReset asks the provider to email a password reset link.
func (v *firebaseVerifier) SendPasswordReset(ctx context.Context, email string) error {
	if v.apiKey == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(map[string]string{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.oobURL+"?key="+v.apiKey, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("password reset request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("password reset request: provider returned %d", resp.StatusCode)
	}
	return nil
}

func (v *firebaseVerifier) signingKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys == nil || v.clk.Now().After(v.keysExpires) {
		keys, ttl, err := v.fetchCerts(ctx)
		if err != nil {
			return nil, err
		}
		v.keys = keys
		v.keysExpires = v.clk.Now().Add(ttl)
	}

	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return key, nil
}

func (v *firebaseVerifier) fetchCerts(ctx context.Context) (map[string]*rsa.PublicKey, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch signing certs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("fetch signing certs: status %d", resp.StatusCode)
	}

	var pemCerts map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&pemCerts); err != nil {
		return nil, 0, fmt.Errorf("decode signing certs: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(pemCerts))
	for kid, certPEM := range pemCerts {
		block, _ := pem.Decode([]byte(certPEM))
		if block == nil {
			return nil, 0, fmt.Errorf("signing cert %q: invalid PEM", kid)
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, 0, fmt.Errorf("signing cert %q: %w", kid, err)
		}
		pub, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			return nil, 0, fmt.Errorf("signing cert %q: not an RSA key", kid)
		}
		keys[kid] = pub
	}

	return keys, certCacheTTL(resp.Header.Get("Cache-Control")), nil
}

// certCacheTTL extracts max-age from a Cache-Control header, falling back to
// a fixed lifetime.
func certCacheTTL(cacheControl string) time.Duration {
	for _, part := range strings.Split(cacheControl, ",") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "max-age=") {
			continue
		}
		secs, err := strconv.Atoi(strings.TrimPrefix(part, "max-age="))
		if err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultCertTTL
}
