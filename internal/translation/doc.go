// Package translation provides title translation into a target language
// using an OpenAI-compatible or Gemini chat model. It includes the per-feed
// translation cache and its persistent stores, a JSON file per feed or a
// shared SQLite database.
package translation
