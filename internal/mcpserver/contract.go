package mcpserver

// ContentFormatContract describes the frontmatter of every content kind the
// site loader understands. Files that break it are skipped at build time.
const ContentFormatContract = `# CourseKit Content Format Contract

Content lives in four directories under the content root. Every file is
Markdown with YAML frontmatter; the file name stem is the slug.

## Materials (` + "`" + `materials/*.md` + "`" + `)

` + "```" + `markdown
---
title: Lab 2 - Parser              # OPTIONAL - defaults to "Untitled"
lead: Build a recursive descent parser
subtitle: CMSC 124
published: 2025-09-01              # REQUIRED - release date, local time (UTC+8)
isDraft: false                     # OPTIONAL - drafts are never published
deadline: 2025-09-10T23:59:00+08:00 # OPTIONAL - defaults to published + 1 month
noDeadline: false                  # OPTIONAL - opt out of deadline tracking
downloadLink: https://example.edu/lab2.zip
authors:
  - name: Ada Lovelace
    nickname: ada
    gitHubUserName: ada
tags: [lab, cmsc-124]
---
` + "```" + `

A material is visible once its publication date has passed, it is not a
draft and none of its tags is hidden.

## Projects (` + "`" + `projects/*.md` + "`" + `)

Required: ` + "`" + `title` + "`" + `, ` + "`" + `published` + "`" + `. Optional: ` + "`" + `url` + "`" + `, ` + "`" + `authors` + "`" + ` (list of names),
` + "`" + `abstract` + "`" + `, ` + "`" + `docs` + "`" + `, ` + "`" + `repository` + "`" + ` (URL), ` + "`" + `thumbnail` + "`" + `, ` + "`" + `year` + "`" + `, ` + "`" + `tags` + "`" + `.

## Bookings (` + "`" + `bookings/*.md` + "`" + `)

Required: ` + "`" + `name` + "`" + `, ` + "`" + `calendar` + "`" + ` (URL). Optional: ` + "`" + `desc` + "`" + `, ` + "`" + `tags` + "`" + `.

## Calendar entries (` + "`" + `events/*.md` + "`" + `)

Required: ` + "`" + `title` + "`" + `, ` + "`" + `date` + "`" + `. Optional: ` + "`" + `tooltip` + "`" + `, ` + "`" + `url` + "`" + `, ` + "`" + `cssClass` + "`" + `, ` + "`" + `tags` + "`" + `,
` + "`" + `eventType` + "`" + ` (one of holiday, release, deadline, progress, defense; anything
else is treated as holiday).

## Rules

1. Dates without an offset are read in Philippine Time (UTC+8).
2. Tags are lowercase, kebab-case.
3. File paths end with ` + "`" + `.md` + "`" + ` and use forward slashes.
4. Encoding is UTF-8.
`
