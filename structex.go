// Package structex extracts structured data from web pages by delegating
// parsing to an LLM completion call instead of page-specific selectors. A
// caller supplies a page (or raw markup) and a schema describing the desired
// fields; structex reduces the markup to fit a model's context window, asks
// the model to fill in the schema, and returns JSON conforming to it while
// tracking the tokens and money spent.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, openai/, rod/). The
// extraction pipeline itself lives in scrape/.
package structex
