// Package knowledge implements the retrieval layer of the knowledge base:
// text chunking, keyword search, extractive answering, and the term
// co-occurrence graph.
package knowledge

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/atelierhq/atelier/internal/domain"
)

// maxChunkLen is the soft ceiling on chunk size. Paragraphs are packed into
// chunks until the next one would cross it.
const maxChunkLen = 800

// snippetLen bounds the snippet returned per search result.
const snippetLen = 200

// ChunkText splits document text into retrieval chunks on paragraph
// boundaries. Whitespace-only input yields no chunks.
func ChunkText(text string) []string {
	paragraphs := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	chunks := []string{}
	var current strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(p) > maxChunkLen {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)

		// A single oversized paragraph still becomes its own chunk.
		if current.Len() > maxChunkLen {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {},
	"in": {}, "on": {}, "is": {}, "are": {}, "was": {}, "be": {}, "it": {},
	"for": {}, "with": {}, "as": {}, "at": {}, "by": {}, "this": {},
	"that": {}, "what": {}, "which": {}, "who": {}, "how": {}, "do": {},
	"does": {}, "from": {},
}

func queryTerms(q string) []string {
	terms := []string{}
	for _, tok := range tokenize(q) {
		if _, skip := stopwords[tok]; !skip {
			terms = append(terms, tok)
		}
	}
	return terms
}

// score counts query term occurrences, weighted down by chunk length so
// short focused chunks outrank long rambling ones.
func score(terms []string, chunkTokens map[string]int, chunkLen int) float64 {
	if chunkLen == 0 {
		return 0
	}
	matched := 0
	for _, term := range terms {
		matched += chunkTokens[term]
	}
	if matched == 0 {
		return 0
	}
	return float64(matched) / float64(1+chunkLen/100)
}

// Search ranks chunks against a query and returns up to limit scored results.
func Search(chunks []domain.Chunk, query string, limit int) []domain.SearchResult {
	terms := queryTerms(query)
	results := []domain.SearchResult{}
	if len(terms) == 0 {
		return results
	}

	for _, c := range chunks {
		tokens := map[string]int{}
		for _, tok := range tokenize(c.Text) {
			tokens[tok]++
		}
		s := score(terms, tokens, len(c.Text))
		if s == 0 {
			continue
		}
		results = append(results, domain.SearchResult{
			DocumentID: c.DocumentID,
			ChunkID:    c.ID,
			Snippet:    snippet(c.Text, terms),
			Score:      s,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// snippet returns a window of the chunk centered on the first term match.
func snippet(text string, terms []string) string {
	lower := strings.ToLower(text)
	pos := -1
	for _, term := range terms {
		if i := strings.Index(lower, term); i >= 0 && (pos < 0 || i < pos) {
			pos = i
		}
	}
	if pos < 0 {
		pos = 0
	}

	start := pos - snippetLen/4
	if start < 0 {
		start = 0
	}
	end := start + snippetLen
	if end > len(text) {
		end = len(text)
	}
	// The window is measured in bytes; back the edges onto rune boundaries
	// so a multi-byte character is never cut in half.
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	out := strings.TrimSpace(text[start:end])
	if start > 0 {
		out = "…" + out
	}
	if end < len(text) {
		out += "…"
	}
	return out
}

// Answer builds an extractive answer: the best-matching sentences from the
// top chunks, with those chunks cited as sources.
func Answer(chunks []domain.Chunk, question string, topK int) domain.Answer {
	sources := Search(chunks, question, topK)
	ans := domain.Answer{Question: question, Sources: sources}
	if len(sources) == 0 {
		ans.Answer = "No relevant documents found."
		return ans
	}

	terms := queryTerms(question)
	byID := map[string]string{}
	for _, c := range chunks {
		byID[c.ID] = c.Text
	}

	best := ""
	bestScore := 0
	for _, src := range sources {
		for _, sentence := range splitSentences(byID[src.ChunkID]) {
			matched := 0
			lower := strings.ToLower(sentence)
			for _, term := range terms {
				if strings.Contains(lower, term) {
					matched++
				}
			}
			if matched > bestScore {
				bestScore = matched
				best = sentence
			}
		}
	}
	if best == "" {
		best = sources[0].Snippet
	}
	ans.Answer = strings.TrimSpace(best)
	return ans
}

func splitSentences(text string) []string {
	sentences := []string{}
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// Graph extracts a term co-occurrence graph from the corpus: capitalized
// multi-letter terms become entities, and entities sharing a chunk get a
// weighted relation. Entities are capped at limit, ordered by frequency.
func Graph(chunks []domain.Chunk, limit int) domain.KnowledgeGraph {
	counts := map[string]int{}
	pairCounts := map[[2]string]int{}

	for _, c := range chunks {
		seen := map[string]struct{}{}
		for _, word := range strings.Fields(c.Text) {
			word = strings.TrimFunc(word, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			})
			first, _ := utf8.DecodeRuneInString(word)
			if utf8.RuneCountInString(word) < 3 || !unicode.IsUpper(first) {
				continue
			}
			if _, skip := stopwords[strings.ToLower(word)]; skip {
				continue
			}
			counts[word]++
			seen[word] = struct{}{}
		}

		names := make([]string, 0, len(seen))
		for name := range seen {
			names = append(names, name)
		}
		sort.Strings(names)
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				pairCounts[[2]string{names[i], names[j]}]++
			}
		}
	}

	entities := make([]domain.GraphEntity, 0, len(counts))
	for name, count := range counts {
		entities = append(entities, domain.GraphEntity{Name: name, Count: count})
	}
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Count != entities[j].Count {
			return entities[i].Count > entities[j].Count
		}
		return entities[i].Name < entities[j].Name
	})
	if len(entities) > limit {
		entities = entities[:limit]
	}

	kept := map[string]struct{}{}
	for _, e := range entities {
		kept[e.Name] = struct{}{}
	}

	relations := []domain.GraphRelation{}
	for pair, weight := range pairCounts {
		if _, ok := kept[pair[0]]; !ok {
			continue
		}
		if _, ok := kept[pair[1]]; !ok {
			continue
		}
		relations = append(relations, domain.GraphRelation{Source: pair[0], Target: pair[1], Weight: weight})
	}
	sort.Slice(relations, func(i, j int) bool {
		if relations[i].Weight != relations[j].Weight {
			return relations[i].Weight > relations[j].Weight
		}
		if relations[i].Source != relations[j].Source {
			return relations[i].Source < relations[j].Source
		}
		return relations[i].Target < relations[j].Target
	})

	return domain.KnowledgeGraph{Entities: entities, Relations: relations}
}
