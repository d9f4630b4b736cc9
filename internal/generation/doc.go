// Package generation defines the boundary with external AI/LLM services
// used to turn extracted text into flashcards. It abstracts the details
// of LLM API integration (Gemini), allowing the application to generate
// cards from source material without coupling to a specific provider.
package generation
