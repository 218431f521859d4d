// Package gemini implements the generation.ContentGenerator interface using
// Google's Gemini API. Each generation kind has its own prompt template; all
// calls share retry logic with exponential backoff and jitter, and responses
// are structurally validated before being handed to the engine as domain
// content.
package gemini
