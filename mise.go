// Package mise extracts structured recipes from arbitrary recipe web pages.
// Given a single URL it returns a validated recipe record with parsed
// ingredient quantities, instructions, image, servings and times, escalating
// from cheap structured-data parsing to headless rendering and finally to a
// generative model only when cheaper strategies fail.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, rod/, gemini/).
package mise
