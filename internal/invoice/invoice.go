// Package invoice generates human-readable order identifiers.
package invoice

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const (
	defaultPrefix = "INV"
	suffixLength  = 6
	alphanumeric  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	timeLayout    = "20060102150405"
)

// Generator produces invoice numbers of the form
// PREFIX-yyyyMMddHHmmss-RANDOM6. Uniqueness is heuristic: the timestamp
// plus a random suffix is not checked against the store for collisions.
type Generator struct {
	prefix string
	now    func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{
		prefix: defaultPrefix,
		now:    time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *Generator) Next() string {
	return fmt.Sprintf("%s-%s-%s", g.prefix, g.now().Format(timeLayout), g.randomSuffix())
}

func (g *Generator) randomSuffix() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	b := make([]byte, suffixLength)
	for i := range b {
		b[i] = alphanumeric[g.rnd.Intn(len(alphanumeric))]
	}
	return string(b)
}
