package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/inkwell-labs/inkwell/internal/domain"
)

const groundedPromptTemplate = `You are an AI assistant helping users understand and analyze their documents. Based on the provided context from the user's documents, answer the following question.

IMPORTANT INSTRUCTIONS:
1. Only use information from the provided context
2. If you cannot answer based on the context, say so clearly
3. Include citations in your response using this format: [Document: filename]
4. Be accurate and concise
5. If referencing specific information, cite the source document

CONTEXT:
%s

QUESTION: %s

RESPONSE:`

const ungroundedPromptTemplate = `You are an AI assistant helping users understand and analyze their documents. The user asked a question, but no relevant content was found in their documents.

IMPORTANT INSTRUCTIONS:
1. Tell the user that their documents contain no relevant information for this question
2. Do not invent document content or citations
3. Be accurate and concise

QUESTION: %s

RESPONSE:`

var citationPattern = regexp.MustCompile(`\[Document: ([^\]]+)\]`)

// BuildPrompt renders the generation prompt. With no context it switches to
// the variant that instructs the model to state it found nothing, so an empty
// notebook still yields an honest answer instead of a fabricated one.
func BuildPrompt(contextText, question string) string {
	if strings.TrimSpace(contextText) == "" {
		return fmt.Sprintf(ungroundedPromptTemplate, question)
	}
	return fmt.Sprintf(groundedPromptTemplate, contextText, question)
}

// ExtractCitations pulls the distinct document references the model cited in
// its answer, in first-seen order.
func ExtractCitations(answer string) []domain.Citation {
	matches := citationPattern.FindAllStringSubmatch(answer, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var citations []domain.Citation
	for _, m := range matches {
		ref := strings.TrimSpace(m[1])
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		citations = append(citations, domain.Citation{Type: "document", Reference: ref})
	}
	return citations
}
