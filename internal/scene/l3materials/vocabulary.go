package l3materials

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Vocabulary is the ordered material category list of the classifier. The
// index of a name is its line position and never changes after loading.
type Vocabulary struct {
	names []string
	index map[string]int
}

// NewVocabulary builds a vocabulary from names in classifier order.
// Duplicate names keep their first position.
func NewVocabulary(names []string) *Vocabulary {
	v := &Vocabulary{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	copy(v.names, names)
	for i, n := range names {
		if _, ok := v.index[n]; !ok {
			v.index[n] = i
		}
	}
	return v
}

// LoadVocabulary reads one category name per line. Surrounding whitespace
// is trimmed; blank lines still occupy an index so positions stay aligned
// with the classifier output.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		names = append(names, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	// Drop trailing blank lines left by editors.
	for len(names) > 0 && names[len(names)-1] == "" {
		names = names[:len(names)-1]
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}
	return NewVocabulary(names), nil
}

// Len returns the number of categories.
func (v *Vocabulary) Len() int { return len(v.names) }

// Name returns the category at idx.
func (v *Vocabulary) Name(idx int) (string, bool) {
	if idx < 0 || idx >= len(v.names) {
		return "", false
	}
	return v.names[idx], true
}

// Index returns the position of name, or -1 and false.
func (v *Vocabulary) Index(name string) (int, bool) {
	i, ok := v.index[name]
	if !ok {
		return -1, false
	}
	return i, true
}

// Names returns a copy of the category list.
func (v *Vocabulary) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}
