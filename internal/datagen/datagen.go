// Package datagen generates random form input for journeys.
package datagen

import (
	"math/rand/v2"
	"sync"

	"github.com/themizzi/storefrontqa/internal/pages"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Default address values for the stock demo storefront.
const (
	DefaultCountry = "United States"
	DefaultZone    = "California"
)

// Generator produces random strings. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Generator seeded from the runtime's random source.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a Generator that always yields the same sequence for a
// seed.
func NewSeeded(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed))}
}

// String returns n alphanumeric characters. Non-positive n yields "".
func (g *Generator) String(n int) string {
	if n <= 0 {
		return ""
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[g.rnd.IntN(len(alphanumeric))]
	}
	return string(b)
}

// Email returns local@domain.com with random parts of the given lengths.
func (g *Generator) Email(localLen, domainLen int) string {
	return g.String(localLen) + "@" + g.String(domainLen) + ".com"
}

// Registration returns a complete random registration.
func (g *Generator) Registration() pages.Registration {
	return pages.Registration{
		FirstName: g.String(6),
		LastName:  g.String(8),
		Email:     g.Email(10, 3),
		Telephone: g.String(10),
		Password:  g.String(12),
	}
}

// Address returns a random address in DefaultCountry and DefaultZone.
func (g *Generator) Address() pages.Address {
	return pages.Address{
		FirstName: g.String(6),
		LastName:  g.String(8),
		Address1:  g.String(12),
		City:      g.String(6),
		PostCode:  g.String(5),
		Country:   DefaultCountry,
		Zone:      DefaultZone,
	}
}

var std = New()

// InputTestData returns n random alphanumeric characters.
func InputTestData(n int) string { return std.String(n) }

// GenerateEmail returns a random address with parts of the given lengths.
func GenerateEmail(localLen, domainLen int) string { return std.Email(localLen, domainLen) }
