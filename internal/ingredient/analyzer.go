package ingredient

import (
	"fmt"
	"strings"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	localIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	localIDLength   = 7
	maxIDAttempts   = 16
)

// IDGenerator mints ephemeral line item ids.
type IDGenerator func() string

// NanoIDs returns the default generator: short random ids like "k3v9x0a".
func NanoIDs() IDGenerator {
	return func() string {
		id, err := gonanoid.Generate(localIDAlphabet, localIDLength)
		if err != nil {
			// Entropy failure; the analyzer retries on duplicates so a fixed fallback is safe.
			return "line"
		}
		return id
	}
}

// SequentialIDs returns a deterministic generator producing prefix-1, prefix-2, ...
func SequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// Analyzer turns a pasted ingredient list into line items.
type Analyzer struct {
	resolver *Resolver
	ids      IDGenerator
}

// NewAnalyzer creates an Analyzer. A nil generator falls back to NanoIDs.
func NewAnalyzer(resolver *Resolver, ids IDGenerator) *Analyzer {
	if ids == nil {
		ids = NanoIDs()
	}
	return &Analyzer{resolver: resolver, ids: ids}
}

// Analyze produces one line item per non-blank line, in input order.
// Each line is "<amount> <name>"; the split happens at the first whitespace only.
// Every call mints fresh local ids, so results must replace earlier ones rather than merge.
func (a *Analyzer) Analyze(text string) []LineItem {
	items := []LineItem{}
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		amount, name := SplitLine(line)
		item := a.resolver.Resolve(name, amount)
		item.LocalID = a.nextID(seen)
		items = append(items, item)
	}
	return items
}

// SplitLine separates the amount token from the ingredient name.
// A line without whitespace is all amount and has an empty name.
func SplitLine(line string) (amount, name string) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

func (a *Analyzer) nextID(seen map[string]struct{}) string {
	var id string
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id = a.ids()
		if _, dup := seen[id]; !dup {
			break
		}
	}
	if _, dup := seen[id]; dup {
		id = fmt.Sprintf("%s-%d", id, len(seen))
	}
	seen[id] = struct{}{}
	return id
}
