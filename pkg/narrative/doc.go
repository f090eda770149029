/*
Package narrative implements ports.Narrator on top of hosted language models.

A Provider sends a single prompt to a model and returns its raw text. The
Narrator builds the review prompt from a finished traversal, strips any
markdown fences from the reply, validates it against the narrative JSON
schema and decodes it into a domain.Narrative.

Gemini, OpenAI (and compatible endpoints) and Anthropic are supported. The
mock provider returns canned replies and is used in tests and offline demos.
*/
package narrative
