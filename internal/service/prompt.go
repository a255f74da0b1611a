package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/graphsage/server/internal/models"
)

// The model speaks to us through literal delimiter tags, not structured
// output. The whole contract is isolated in this file: prompts request the
// tags, parseAttempt extracts them. Swapping in schema-constrained generation
// later only touches this seam, never the loop.

var (
	queryRe       = regexp.MustCompile(`(?s)<query>(.*?)</query>`)
	variablesRe   = regexp.MustCompile(`(?s)<variables>(.*?)</variables>`)
	explanationRe = regexp.MustCompile(`(?s)<explanation>(.*?)</explanation>`)
)

// workedExample anchors the output format with a known-good query/variables
// pair against the indexed dataset, variable declarations included.
const workedExample = `<query>
query GetRound($roundId: String!) {
  rounds(where: {id: {_eq: $roundId}}) {
    id
    roundMetadata
  }
}
</query>
<variables>
{"roundId": "865"}
</variables>
<explanation>
Looks up a single round by id and returns its metadata blob.
</explanation>`

// domainHints carries dataset facts the schema alone does not reveal.
const domainHints = `- Entity ids are numeric strings (e.g. "865"), not integers.
- Filter with Hasura-style where clauses: where: {field: {_eq: $value}}.
- Metadata fields are jsonb blobs; select the whole field rather than subfields.`

const outputContract = `Respond with exactly three tagged sections and nothing else:
<query>the GraphQL query, including variable declarations</query>
<variables>a JSON object matching the declared variables, or {}</variables>
<explanation>one short paragraph of rationale</explanation>`

// buildGenerationPrompt is the first-attempt prompt: question, schema,
// retrieved knowledge, a worked example and the output contract.
func buildGenerationPrompt(question string, bundle models.ContextBundle) string {
	var sb strings.Builder
	sb.WriteString("You write GraphQL queries against the schema below to answer questions about an indexed dataset.\n\n")
	fmt.Fprintf(&sb, "Question:\n%s\n\n", question)
	fmt.Fprintf(&sb, "GraphQL schema:\n%s\n\n", bundle.Schema)
	if bundle.Knowledge != "" && bundle.Knowledge != NoContextFound {
		fmt.Fprintf(&sb, "Relevant source and documentation excerpts:\n%s\n\n", bundle.Knowledge)
	}
	fmt.Fprintf(&sb, "Hints:\n%s\n\n", domainHints)
	fmt.Fprintf(&sb, "Example of a valid response:\n%s\n\n", workedExample)
	sb.WriteString(outputContract)
	return sb.String()
}

// buildRepairPrompt augments the generation prompt with the previous failed
// attempt and its errors, and demands a different query. The failed artefacts
// travel in their own tags so the model can quote them precisely.
func buildRepairPrompt(question string, bundle models.ContextBundle, prev models.QueryAttempt, prevResult models.ExecutionResult) string {
	var sb strings.Builder
	sb.WriteString("Your previous GraphQL query failed. Produce a corrected query. Do NOT return the same query again — fix the cause of the error.\n\n")
	fmt.Fprintf(&sb, "Question:\n%s\n\n", question)
	fmt.Fprintf(&sb, "GraphQL schema:\n%s\n\n", bundle.Schema)
	if bundle.Knowledge != "" && bundle.Knowledge != NoContextFound {
		fmt.Fprintf(&sb, "Relevant source and documentation excerpts:\n%s\n\n", bundle.Knowledge)
	}
	fmt.Fprintf(&sb, "<failed_query>\n%s\n</failed_query>\n", prev.Query)
	fmt.Fprintf(&sb, "<failed_variables>\n%s\n</failed_variables>\n", prev.Variables)
	fmt.Fprintf(&sb, "<error_message>\n%s\n</error_message>\n\n", strings.Join(prevResult.Errors, "\n"))
	if prev.Explanation != "" {
		fmt.Fprintf(&sb, "The reasoning behind the failed attempt was:\n%s\n\n", prev.Explanation)
	}
	fmt.Fprintf(&sb, "Hints:\n%s\n\n", domainHints)
	sb.WriteString(outputContract)
	return sb.String()
}

// buildAnalysisPrompt asks for a natural-language reading of the final data,
// ending in a machine-parseable relevance line.
func buildAnalysisPrompt(question string, attempt models.QueryAttempt, data string) string {
	var sb strings.Builder
	sb.WriteString("You are reviewing the result of a GraphQL query that was generated to answer a question.\n\n")
	fmt.Fprintf(&sb, "Question:\n%s\n\n", question)
	fmt.Fprintf(&sb, "Executed query:\n%s\n\n", attempt.Query)
	if attempt.Variables != "" {
		fmt.Fprintf(&sb, "Variables:\n%s\n\n", attempt.Variables)
	}
	if attempt.Explanation != "" {
		fmt.Fprintf(&sb, "Why this query was written:\n%s\n\n", attempt.Explanation)
	}
	fmt.Fprintf(&sb, "Result data (may be truncated):\n%s\n\n", data)
	sb.WriteString("Explain in plain language what the data says about the question, and whether it actually answers it. ")
	sb.WriteString("End your response with a final line of exactly this form:\nRelevance score: X/10")
	return sb.String()
}

// parseAttempt extracts a QueryAttempt from raw model output. ok is false
// when no non-empty <query> tag is present — callers must treat that as a
// failed generation. Missing tags yield empty strings, never errors.
func parseAttempt(text string) (models.QueryAttempt, bool) {
	attempt := models.QueryAttempt{
		Query:       extractTag(queryRe, text),
		Variables:   extractTag(variablesRe, text),
		Explanation: extractTag(explanationRe, text),
	}
	return attempt, attempt.Query != ""
}

func extractTag(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
