package mcpserver

// PageFormatContract describes the page structure and wikilink rules that
// LLM consumers should follow when creating or updating pages.
const PageFormatContract = `# Wiki Page Format Contract

Every page stored in the wiki follows this structure.

## Structure

A page is a JSON document with these fields:

` + "```" + `json
{
  "id": "kingdom-of-aldoria",
  "title": "Kingdom of Aldoria",
  "content": "Body text with [[wikilinks]].",
  "tags": ["worldbuilding"],
  "type": "article"
}
` + "```" + `

## Rules

1. **` + "`" + `title` + "`" + ` is required.** The page identifier is derived from it:
   lowercased, diacritics stripped, non-alphanumeric runs collapsed to
   single hyphens (e.g. ` + "`" + `Kingdom of Aldoria` + "`" + ` becomes ` + "`" + `kingdom-of-aldoria` + "`" + `).
2. **Wikilinks** use double brackets: ` + "`" + `[[Other Page]]` + "`" + `. The target is
   matched against page identifiers after the same normalization, so
   ` + "`" + `[[Kingdom of Aldoria]]` + "`" + ` and ` + "`" + `[[kingdom-of-aldoria]]` + "`" + ` resolve to
   the same page.
3. Use ` + "`" + `[[target|alias]]` + "`" + ` for display text that differs from the target.
4. **Links inside code are ignored.** Fenced code blocks, inline code
   spans, and 4-space indented code lines never produce links.
5. A link to a page that does not exist yet is a dead link, not an error.
   Creating the target page later resolves it automatically.
6. **Tags** are lowercase, kebab-case (e.g. ` + "`" + `project-x` + "`" + `, ` + "`" + `meeting-notes` + "`" + `).
7. **Encoding** is UTF-8.

## Example

` + "```" + `json
{
  "title": "King Aldric",
  "content": "King Aldric rules the [[Kingdom of Aldoria]].\n\nSee also [[House of Aldric|his dynasty]].",
  "tags": ["character"],
  "type": "article"
}
` + "```" + `
`
