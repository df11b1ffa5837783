package money

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	publicIDAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	publicIDLength   = 8
	publicIDAttempts = 30

	SalePrefix       = "VEN"
	PromissoryPrefix = "PROM"
)

// ErrPublicIDExhausted is returned when every candidate collided.
var ErrPublicIDExhausted = errors.New("public id: no unique value after retries")

// NewPublicID returns PREFIX-XXXXXXXX using an alphabet without 0/O/1/I.
func NewPublicID(prefix string) (string, error) {
	buf := make([]byte, publicIDLength)
	max := big.NewInt(int64(len(publicIDAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("public id: %w", err)
		}
		buf[i] = publicIDAlphabet[n.Int64()]
	}
	return prefix + "-" + string(buf), nil
}

// ExistsFunc reports whether a public id is already taken.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// UniquePublicID draws ids until exists returns false.
func UniquePublicID(ctx context.Context, prefix string, exists ExistsFunc) (string, error) {
	for i := 0; i < publicIDAttempts; i++ {
		id, err := NewPublicID(prefix)
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("public id lookup: %w", err)
		}
		if !taken {
			return id, nil
		}
	}
	return "", ErrPublicIDExhausted
}
