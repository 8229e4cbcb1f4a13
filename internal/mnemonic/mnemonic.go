// Package mnemonic generates BIP-39 recovery phrases from a runtime-selected
// language wordlist.
package mnemonic

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/tyler-smith/go-bip39"
	"github.com/tyler-smith/go-bip39/wordlists"
)

// WordCount is the number of words in a phrase. Only 12, 18 and 24 are valid.
type WordCount int

const (
	Short  WordCount = 12
	Medium WordCount = 18
	Long   WordCount = 24
)

// EntropyBits maps a word count to the entropy size BIP-39 requires for it.
func (c WordCount) EntropyBits() (int, error) {
	switch c {
	case Short:
		return 128, nil
	case Medium:
		return 192, nil
	case Long:
		return 256, nil
	}
	return 0, common.Errorf(common.KindInvalidWordCount, "word count must be 12, 18 or 24, got %d", int(c))
}

// Language names a BIP-39 wordlist.
type Language string

const English Language = "english"

var languages = map[Language][]string{
	"english":             wordlists.English,
	"japanese":            wordlists.Japanese,
	"korean":              wordlists.Korean,
	"spanish":             wordlists.Spanish,
	"french":              wordlists.French,
	"italian":             wordlists.Italian,
	"czech":               wordlists.Czech,
	"chinese_simplified":  wordlists.ChineseSimplified,
	"chinese_traditional": wordlists.ChineseTraditional,
}

// Languages lists the supported language names in sorted order.
func Languages() []string {
	out := make([]string, 0, len(languages))
	for l := range languages {
		out = append(out, string(l))
	}
	sort.Strings(out)
	return out
}

// ParseLanguage resolves a configured language name, case-insensitively.
func ParseLanguage(name string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := languages[l]; !ok {
		return "", fmt.Errorf("unsupported mnemonic language %q (supported: %s)", name, strings.Join(Languages(), ", "))
	}
	return l, nil
}

// bip39 keeps its wordlist in a package global; every call that depends on
// it swaps the list in under this lock.
var wordlistMu sync.Mutex

// Generator produces phrases in one language.
type Generator struct {
	language Language
	words    []string
}

// NewGenerator returns a generator for the given language.
func NewGenerator(language Language) (*Generator, error) {
	words, ok := languages[language]
	if !ok {
		return nil, fmt.Errorf("unsupported mnemonic language %q", language)
	}
	return &Generator{language: language, words: words}, nil
}

// Language returns the generator's language.
func (g *Generator) Language() Language {
	return g.language
}

// Generate returns a space-joined phrase of exactly count words drawn from
// the generator's wordlist. Invalid counts fail before any randomness is read.
func (g *Generator) Generate(count WordCount) (string, error) {
	bits, err := count.EntropyBits()
	if err != nil {
		return "", err
	}

	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", common.NewError(common.KindCryptoError, "generate entropy", err)
	}
	defer common.WipeByteArray(entropy)

	var phrase string
	g.withWordlist(func() {
		phrase, err = bip39.NewMnemonic(entropy)
	})
	if err != nil {
		return "", common.NewError(common.KindCryptoError, "generate mnemonic", err)
	}
	return phrase, nil
}

// Validate reports whether phrase is a checksum-valid mnemonic in the
// generator's language.
func (g *Generator) Validate(phrase string) bool {
	var ok bool
	g.withWordlist(func() {
		ok = bip39.IsMnemonicValid(normalize(phrase))
	})
	return ok
}

// Seed derives the 64-byte BIP-39 seed from phrase and an optional password.
// The caller must wipe the returned seed.
func (g *Generator) Seed(phrase, password string) ([]byte, error) {
	var (
		seed []byte
		err  error
	)
	g.withWordlist(func() {
		seed, err = bip39.NewSeedWithErrorChecking(normalize(phrase), password)
	})
	if err != nil {
		return nil, common.NewError(common.KindInvalidParams, "invalid mnemonic", err)
	}
	return seed, nil
}

func (g *Generator) withWordlist(fn func()) {
	wordlistMu.Lock()
	defer wordlistMu.Unlock()
	bip39.SetWordList(g.words)
	fn()
}

// Generate is a convenience wrapper for one-off phrases.
func Generate(language Language, count WordCount) (string, error) {
	if _, err := count.EntropyBits(); err != nil {
		return "", err
	}
	g, err := NewGenerator(language)
	if err != nil {
		return "", err
	}
	return g.Generate(count)
}

func normalize(phrase string) string {
	return strings.Join(strings.Fields(phrase), " ")
}
