package pipeline

import (
	"github.com/dgallion1/docvoice/internal/llm"
)

// MaxContextChars is how much extracted text, in characters, reaches the
// completion provider. Anything past it is dropped without regard to
// document or sentence boundaries.
const MaxContextChars = 3000

const systemInstruction = "You are a helpful assistant answering questions based on the supplied document text."

// BuildPrompt combines the leading MaxContextChars characters of text with the
// question.
func BuildPrompt(text, question string) llm.Prompt {
	return llm.Prompt{
		System: systemInstruction,
		User: "Use the following text from the supplied documents to answer the question.\n\n" +
			"Text:\n" + truncateChars(text, MaxContextChars) + "\n\n" +
			"Question: " + question + "\nAnswer:",
	}
}

// truncateChars returns the first n runes of s.
func truncateChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
