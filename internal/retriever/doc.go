// Package retriever answers natural-language queries against the vector
// store. It embeds the query text, pulls the top-k nearest chunks, and
// annotates each hit with whether its source file is still cleanly indexed
// so callers can surface possibly out-of-date context.
//
// Responses are cached briefly by (query, k) to keep interactive chat from
// re-embedding identical questions.
package retriever
