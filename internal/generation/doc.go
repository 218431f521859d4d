// Package generation defines the ContentGenerator interface and error
// taxonomy for AI-backed content creation: diagnostic quizzes, remediation
// lessons with flashcards, validation quizzes, practice exercises, and
// free-response evaluation.
//
// The interface isolates the application core from the concrete LLM
// integration (see platform/gemini), following the hexagonal architecture
// pattern. Errors distinguish transient failures, which callers may retry
// with session state held in place, from permanent ones such as safety
// blocks and malformed responses.
package generation
