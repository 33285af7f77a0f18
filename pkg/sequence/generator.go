package sequence

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("sequence",
	fx.Provide(NewRedisGenerator),
)

type Generator interface {
	NextReferralCode(ctx context.Context) (string, error)
}

type RedisGenerator struct {
	rdb *redis.Client
}

type Params struct {
	fx.In

	Redis *redis.Client
}

func NewRedisGenerator(p Params) Generator {
	return &RedisGenerator{
		rdb: p.Redis,
	}
}

// NextReferralCode produces a short shareable code, 8 characters until the
// counter outgrows three base36 digits. A redis counter keeps codes
// collision-free across instances, the random suffix keeps them
// non-guessable.
func (g *RedisGenerator) NextReferralCode(ctx context.Context) (string, error) {
	seq, err := g.rdb.Incr(ctx, "seq:referral").Result()
	if err != nil {
		return "", err
	}

	encodedSeq := strings.ToUpper(fmt.Sprintf("%03s", strconv.FormatInt(seq, 36)))

	randSuffix, err := RandomCode(5)
	if err != nil {
		return "", err
	}

	return encodedSeq + randSuffix, nil
}

// RandomCode returns n characters drawn from an unambiguous uppercase
// alphabet (no I, O, 0 or 1).
func RandomCode(n int) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, n)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			return "", err
		}
		b[i] = chars[num.Int64()]
	}
	return string(b), nil
}
