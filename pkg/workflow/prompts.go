package workflow

// Default prompt templates for the council stages. Templates are Liquid;
// every stage renders with a {{ userQuery }} binding. Stage config may
// replace a Default* template, but the structural footers below it stay
// fixed so evaluator output remains parseable.

// DefaultUserPromptTemplate passes the user's question straight through to
// each council model.
const DefaultUserPromptTemplate = `{{ userQuery }}`

// DefaultRankingPromptTemplate opens the evaluator prompt. The anonymized
// response block and the ranking instructions are appended after it.
const DefaultRankingPromptTemplate = `You are evaluating answers that several anonymous assistants gave to the same question. Judge only what is written; you do not know which assistant produced which answer.

Original question:
{{ userQuery }}`

// rankingInstructions closes every evaluator prompt. ParseRanking depends
// on the FINAL RANKING section format described here.
const rankingInstructions = `Evaluate each response for accuracy, completeness, clarity, and depth of insight. Briefly justify your assessment of each response.

Then end your reply with a section in exactly this format, best response first:

FINAL RANKING:
1. Response X
2. Response Y
3. Response Z

List every response exactly once, using only its label.`

// DefaultSynthesisPromptTemplate opens the chairman prompt. The
// de-anonymized responses, the aggregate rankings, and the synthesis
// instructions are appended after it.
const DefaultSynthesisPromptTemplate = `You are the chairman of an LLM council. Several models answered the user's question independently, then ranked each other's answers anonymously. Your job is to deliver the council's final answer.

Original question:
{{ userQuery }}`

// synthesisInstructions closes the chairman prompt.
const synthesisInstructions = `Synthesize the council's work into a single final answer: combine the strongest points of the highly ranked responses, correct any errors you notice, and resolve disagreements explicitly. Answer the user directly; do not describe the council process.`

// titlePromptTemplate produces a conversation title after the first
// exchange. Rendered with {{ userQuery }} and {{ finalAnswer }}.
const titlePromptTemplate = `Write a short title (3 to 7 words) for a conversation that starts with this exchange. Reply with the title only, no quotes.

Question:
{{ userQuery }}

Answer:
{{ finalAnswer }}`
