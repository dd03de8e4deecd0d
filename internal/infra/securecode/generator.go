package securecode

import (
	"crypto/rand"
	"math/big"

	"giveflow/internal/pkg/config"
	"giveflow/internal/pkg/errs"
)

const digits = "0123456789"

// Generator mints numeric handoff codes. Codes are compared in
// constant time at submission, so they are stored as issued.
type Generator struct {
	length int
}

func NewGenerator(cfg config.HandoffConfig) *Generator {
	return &Generator{length: cfg.CodeLength}
}

func (g *Generator) Generate() (string, error) {
	buf := make([]byte, g.length)
	max := big.NewInt(int64(len(digits)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errs.Wrap(err, "failed to generate verification code")
		}
		buf[i] = digits[n.Int64()]
	}
	return string(buf), nil
}
