// Package generation defines the SectionGenerator boundary between the memo
// pipeline and the LLM provider, along with the error taxonomy the task
// layer uses to decide between retrying a section and failing it. The Gemini
// implementation lives in internal/platform/gemini.
package generation
