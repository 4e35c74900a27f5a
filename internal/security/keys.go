package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"strings"
	"time"
)

// ErrInvalidKey reports unreadable PEM, an unexpected block type or an unsupported key.
var ErrInvalidKey = errors.New("invalid key")

// LoadPEM resolves a key setting. Values starting with a PEM header are inline keys, with
// literal `\n` sequences from env files turned into newlines; anything else is a file path.
func LoadPEM(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, ErrInvalidKey
	case strings.HasPrefix(s, "-----BEGIN"):
		return []byte(strings.ReplaceAll(s, `\n`, "\n")), nil
	default:
		return os.ReadFile(s)
	}
}

func decodeBlock(s string) (*pem.Block, error) {
	raw, err := LoadPEM(s)
	if err != nil {
		return nil, err
	}
	if block, _ := pem.Decode(raw); block != nil {
		return block, nil
	}
	return nil, ErrInvalidKey
}

// ParsePrivateKey reads an RSA or ECDSA private key in PKCS#1, PKCS#8 or SEC 1 form.
func ParsePrivateKey(s string) (crypto.Signer, error) {
	block, err := decodeBlock(s)
	if err != nil {
		return nil, err
	}
	var key any
	switch block.Type {
	case "PRIVATE KEY":
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case "RSA PRIVATE KEY":
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		key, err = x509.ParseECPrivateKey(block.Bytes)
	default:
		return nil, ErrInvalidKey
	}
	if err != nil {
		return nil, err
	}
	signer, ok := key.(crypto.Signer)
	if !ok || KeyAlg(signer.Public()) == "" {
		return nil, ErrInvalidKey
	}
	return signer, nil
}

// ParsePublicKey reads an RSA or ECDSA public key in PKIX or PKCS#1 form.
func ParsePublicKey(s string) (crypto.PublicKey, error) {
	block, err := decodeBlock(s)
	if err != nil {
		return nil, err
	}
	var key crypto.PublicKey
	switch block.Type {
	case "PUBLIC KEY":
		key, err = x509.ParsePKIXPublicKey(block.Bytes)
	case "RSA PUBLIC KEY":
		key, err = x509.ParsePKCS1PublicKey(block.Bytes)
	default:
		return nil, ErrInvalidKey
	}
	if err != nil {
		return nil, err
	}
	if KeyAlg(key) == "" {
		return nil, ErrInvalidKey
	}
	return key, nil
}

// KeyAlg maps a public key to its JWS algorithm: RS256 for RSA, ES256 for ECDSA on P-256.
// Any other key yields "".
func KeyAlg(pub crypto.PublicKey) string {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return "RS256"
	case *ecdsa.PublicKey:
		if k.Curve == elliptic.P256() {
			return "ES256"
		}
	}
	return ""
}

// NewTokenProviderFromPEM builds the session verifier from configuration. privatePEM is
// optional and only needed to issue tokens; a missing publicPEM falls back to the
// private key's public half.
func NewTokenProviderFromPEM(privatePEM, publicPEM, issuer, audience string, ttl time.Duration) (*TokenProvider, error) {
	var signer crypto.Signer
	if strings.TrimSpace(privatePEM) != "" {
		s, err := ParsePrivateKey(privatePEM)
		if err != nil {
			return nil, err
		}
		signer = s
	}

	var pub crypto.PublicKey
	if strings.TrimSpace(publicPEM) != "" {
		p, err := ParsePublicKey(publicPEM)
		if err != nil {
			return nil, err
		}
		pub = p
	} else if signer != nil {
		pub = signer.Public()
	} else {
		return nil, ErrInvalidKey
	}
	return NewTokenProvider(signer, pub, issuer, audience, ttl), nil
}
