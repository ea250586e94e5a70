package chunker

import (
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

const (
	DefaultMaxTokens     = 300
	DefaultOverlapTokens = 50
)

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
)

// sentenceTokenizer lazily builds the punkt tokenizer. Loading the embedded
// training data is expensive, so it happens once per process.
func sentenceTokenizer() *sentences.DefaultSentenceTokenizer {
	tokenizerOnce.Do(func() {
		t, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			// The english training data is compiled into the binary; a failure
			// here means a broken build, not a runtime condition.
			panic("chunker: load sentence tokenizer: " + err.Error())
		}
		tokenizer = t
	})
	return tokenizer
}

// Chunk splits text into token-bounded windows of whole sentences.
//
// Sentences are appended greedily while the buffer's whitespace-token count
// stays within maxTokens. When the next sentence would overflow, the buffer is
// emitted and the next one is seeded with a trailing suffix of whole sentences
// totalling at least overlapTokens, so consecutive chunks share lexical
// context. A single sentence longer than maxTokens is emitted whole; the
// budget is a soft target, never a reason to cut a sentence.
//
// Empty input yields no chunks. The output is a pure function of the inputs.
func Chunk(text string, maxTokens, overlapTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = DefaultOverlapTokens
	}
	sents := splitSentences(text)
	if len(sents) == 0 {
		return nil
	}

	var (
		chunks    []string
		buf       []string
		bufTokens int
	)
	for _, sent := range sents {
		n := countTokens(sent)
		if len(buf) > 0 && bufTokens+n > maxTokens {
			chunks = append(chunks, strings.Join(buf, " "))
			buf, bufTokens = overlapSuffix(buf, overlapTokens)
		}
		buf = append(buf, sent)
		bufTokens += n
	}
	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, " "))
	}
	return chunks
}

// overlapSuffix walks backward from the end of the emitted buffer, keeping
// whole sentences until their token sum reaches overlapTokens. Sentences are
// never split to hit the target exactly.
func overlapSuffix(buf []string, overlapTokens int) ([]string, int) {
	if overlapTokens <= 0 {
		return nil, 0
	}
	total := 0
	i := len(buf)
	for i > 0 && total < overlapTokens {
		i--
		total += countTokens(buf[i])
	}
	keep := make([]string, len(buf)-i)
	copy(keep, buf[i:])
	return keep, total
}

func splitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, s := range sentenceTokenizer().Tokenize(text) {
		t := strings.TrimSpace(s.Text)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func countTokens(s string) int {
	return len(strings.Fields(s))
}
