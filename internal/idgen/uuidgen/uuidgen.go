package uuidgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	referencePrefix   = "DT-"
	referenceLen      = 9
	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (g *Generator) GetID(_ context.Context) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}

	return id.String(), nil
}

// GetReference returns a customer-facing booking reference like DT-7K2Q9XW1M.
func (g *Generator) GetReference(_ context.Context) (string, error) {
	buf := make([]byte, referenceLen)
	limit := big.NewInt(int64(len(referenceAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate reference: %w", err)
		}

		buf[i] = referenceAlphabet[n.Int64()]
	}

	return referencePrefix + string(buf), nil
}
