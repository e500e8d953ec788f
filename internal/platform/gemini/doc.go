// Package gemini provides an implementation of the generation.SectionGenerator
// interface that uses Google's Gemini API for writing deal memo sections.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's domain logic to Google's external Gemini AI
// service. It translates between the application's domain models and the
// Gemini API without exposing the details of the external service to the
// core application.
//
// Key responsibilities:
//
// 1. Prompt Management:
//   - Builds a section-specific prompt from the deal's name, company, stage,
//     and description
//   - Each of the fixed memo section types has its own writing instructions
//
// 2. Error Handling:
//   - Implements retry logic with exponential backoff for transient errors
//   - Categorizes and translates API errors to application-specific errors
//   - Handles content filtering and safety measures
package gemini
