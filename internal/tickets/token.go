package tickets

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	tokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	tokenLength   = 20
	tokenAttempts = 5
)

// generateToken produces a gate token of the form TKT-XXXX... using an
// alphabet without ambiguous characters.
func generateToken() (string, error) {
	raw := make([]byte, tokenLength)
	for i := range raw {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(tokenAlphabet))))
		if err != nil {
			return "", err
		}
		raw[i] = tokenAlphabet[num.Int64()]
	}
	return fmt.Sprintf("TKT-%s", string(raw)), nil
}

// uniqueToken generates a token and verifies it against the store, retrying
// on the unlikely collision.
func uniqueToken(ctx context.Context, repo Repository) (string, error) {
	for i := 0; i < tokenAttempts; i++ {
		token, err := generateToken()
		if err != nil {
			return "", err
		}
		_, err = repo.GetByToken(ctx, token)
		if errors.Is(err, ErrUnknownToken) {
			return token, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", ErrTokenExhausted
}
