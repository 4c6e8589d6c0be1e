package mcpserver

// ModuleFormatContract describes the markdown module format that LLM
// consumers should follow when writing modules.
const ModuleFormatContract = `# ansuz Module Format

Every module is one markdown file below the content root. Its slug is the
file path without ` + "`" + `.md` + "`" + ` (for example ` + "`" + `kapitel-1/einleitung` + "`" + `).

## Structure

` + "```" + `markdown
---
title: Lernen durch Lehren       # display title
kapitel: 1                        # chapter, number or string
unterkapitel: 2                   # subchapter, number or string
status: entwurf                   # entwurf | überarbeitung | final
importance: high                  # low | medium | high
urgency: medium                   # low | medium | high
tags: [Motivation, Schüler]
summary: Kurze Zusammenfassung.
quotes:
  - "Wer lehrt, lernt doppelt."
questions:
  - Wann haben Sie zuletzt selbst etwas gelehrt?
created: 2025-03-14
updated: 2025-03-14
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. The ` + "`" + `---` + "`" + ` fences must be the first line of the file, followed by one blank
   line after the closing fence.
2. ` + "`" + `updated` + "`" + ` is maintained by the service on every save; ` + "`" + `created` + "`" + ` is set once.
3. Modules are ordered by ` + "`" + `kapitel` + "`" + ` then ` + "`" + `unterkapitel` + "`" + `, comparing digit runs numerically.
4. The file ` + "`" + `template.md` + "`" + ` in the root is reserved and never listed.
5. Keys the service does not know (for example ` + "`" + `reviewNotes` + "`" + `) are preserved verbatim.
6. All prose is German.

## Saving through the save_module tool

Pass the body as ` + "`" + `content` + "`" + ` and metadata changes as a ` + "`" + `frontmatter` + "`" + ` object.
Omitted keys stay untouched, ` + "`" + `null` + "`" + ` removes a key, any other value replaces it.
`
