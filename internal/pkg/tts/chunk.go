package tts

import (
	"strings"
	"unicode/utf8"
)

// SplitText 将文本按行、句子、单词的优先级切分，保证每段不超过 maxBytes 字节（UTF-8）
// 单个超长单词会被按 rune 边界硬切
func SplitText(text string, maxBytes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxBytes <= 0 || len(text) <= maxBytes {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}
	add := func(piece, sep string) {
		if current.Len() > 0 && current.Len()+len(sep)+len(piece) > maxBytes {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(piece)
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) <= maxBytes {
			add(line, "\n")
			continue
		}
		for _, sentence := range splitSentences(line) {
			if len(sentence) <= maxBytes {
				add(sentence, " ")
				continue
			}
			for _, word := range strings.Fields(sentence) {
				for len(word) > maxBytes {
					cut := runeBoundary(word, maxBytes)
					flush()
					chunks = append(chunks, word[:cut])
					word = word[cut:]
				}
				add(word, " ")
			}
		}
	}
	flush()
	return chunks
}

// splitSentences 在 . ! ? 后跟空白处切分，保留标点
func splitSentences(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if i+1 < len(s) && s[i+1] == ' ' {
				out = append(out, strings.TrimSpace(s[start:i+1]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func runeBoundary(s string, max int) int {
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(s)
		return size
	}
	return cut
}
