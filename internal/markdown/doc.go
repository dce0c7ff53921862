// Package markdown discovers Markdown source files, extracts front matter
// metadata, and renders Markdown bodies into HTML. It is the ingestion stage
// of the publishing pipeline.
package markdown
