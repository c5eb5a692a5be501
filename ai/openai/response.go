package openai

import (
	"strings"
	"unicode"
)

// cleanResponse strips markdown code fences and repairs the defects chat
// models most often introduce into the interpretation object.
func cleanResponse(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop the language tag on the opening fence, if any.
		if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{[") {
			text = text[nl+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	if start, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}'); start > 0 && end > start {
		text = text[start : end+1]
	}
	return repairJSON(strings.TrimSpace(text))
}

// repairJSON quotes bare or half-quoted object keys and removes trailing
// commas. String literals are copied through untouched.
func repairJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	inString := false
	expectKey := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			b.WriteByte(ch)
			switch ch {
			case '\\':
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
			case '"':
				inString = false
			}
			continue
		}

		switch {
		case ch == '"':
			inString = true
			expectKey = false
			b.WriteByte(ch)
		case ch == '{' || ch == ',':
			if next := nextSignificant(s, i+1); ch == ',' && (next == '}' || next == ']') {
				continue
			}
			expectKey = ch == '{' || insideObject(b.String())
			b.WriteByte(ch)
		case expectKey && isKeyByte(ch):
			j := i
			for j < len(s) && isKeyByte(s[j]) {
				j++
			}
			b.WriteByte('"')
			b.WriteString(s[i:j])
			b.WriteByte('"')
			if j < len(s) && s[j] == '"' {
				j++
			}
			expectKey = false
			i = j - 1
		default:
			if !unicode.IsSpace(rune(ch)) {
				expectKey = false
			}
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// insideObject reports whether the innermost open bracket of the text
// written so far is an object.
func insideObject(written string) bool {
	depth := 0
	inString := false
	for i := len(written) - 1; i >= 0; i-- {
		ch := written[i]
		if ch == '"' && (i == 0 || written[i-1] != '\\') {
			inString = !inString
		}
		if inString {
			continue
		}
		switch ch {
		case '}', ']':
			depth++
		case '{', '[':
			if depth == 0 {
				return ch == '{'
			}
			depth--
		}
	}
	return false
}

func nextSignificant(s string, from int) byte {
	for i := from; i < len(s); i++ {
		if !unicode.IsSpace(rune(s[i])) {
			return s[i]
		}
	}
	return 0
}

func isKeyByte(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

// scrubWord trims punctuation, hashtag and mention markers from the edges of
// a keyword, tag or owner. Inner hyphens, dots and underscores are kept so
// names like data-eng or sales.orders survive.
func scrubWord(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || r == '#' || r == '@'
	})
}
