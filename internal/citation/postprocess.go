package citation

import (
	"fmt"
	"strconv"
	"strings"
)

// The generated answer is treated as a stream of literal text and bracketed
// integer markers. The model may cite out of order, skip offered sources, or
// repeat one, so provisional numbers are compacted here into a dense 1..M
// sequence ordered by first appearance. Markers the model invented are
// dropped outright: an invalid citation must never reach the user.

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenMarker
)

type token struct {
	kind   tokenKind
	text   string
	number int
}

// PostProcess is a pure function of its inputs: the same answer and map
// always produce the same result.
func PostProcess(rawAnswer string, citations Map) Result {
	finals := make(map[int]int)
	sources := make([]Source, 0, len(citations))
	next := 1

	var out strings.Builder
	for _, tok := range tokenize(rawAnswer) {
		if tok.kind == tokenLiteral {
			out.WriteString(tok.text)
			continue
		}

		eventID, issued := citations[tok.number]
		if !issued {
			continue
		}

		final, seen := finals[tok.number]
		if !seen {
			final = next
			next++
			finals[tok.number] = final
			sources = append(sources, Source{Citation: final, EventID: eventID})
		}

		fmt.Fprintf(&out, "[%d]", final)
	}

	return Result{Answer: out.String(), Sources: sources}
}

func tokenize(s string) []token {
	var tokens []token
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			tokens = append(tokens, token{kind: tokenLiteral, text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(s); {
		if s[i] != '[' {
			literal.WriteByte(s[i])
			i++
			continue
		}

		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}

		// A marker is "[", one or more digits, "]". Anything else is text.
		if j == i+1 || j >= len(s) || s[j] != ']' {
			literal.WriteByte(s[i])
			i++
			continue
		}

		number, err := strconv.Atoi(s[i+1 : j])
		if err != nil {
			literal.WriteByte(s[i])
			i++
			continue
		}

		flush()
		tokens = append(tokens, token{kind: tokenMarker, text: s[i : j+1], number: number})
		i = j + 1
	}

	flush()
	return tokens
}
