package prompt

// SystemInstruction accompanies every summary request.
const SystemInstruction = `You write concise, accurate pull request summaries for reviewers. Use Markdown. Never invent changes that are not in the diff.`

const summaryPromptTemplate = `You are a senior engineer writing a pull request summary for your reviewers.
Write 200-350 words in Markdown using exactly these four sections:

### User-facing changes
What changes for users or operators of the system.

### Files touched (grouped)
The changed files grouped by area, one line per group.

### Manual test steps
Numbered steps a reviewer can follow to verify the change by hand.

### Risks & rollback
What could break, and how to roll the change back.

Use the specification below for intent and the diff for what actually changed.

## Specification
{{.Spec}}

## Diff
{{.Diff}}
`
