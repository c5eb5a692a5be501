// Package memory implements backend.Backend over an in-process asset catalog.
//
// It stands in for the remote search service when running offline and in
// integration tests. Matching is deliberately simple:
//
//   - Keyword search tokenizes the query, drops stop words and requires every
//     remaining word to appear, as a word or word prefix, in the asset name,
//     description, type or tags. Name matches rank higher.
//   - Semantic search embeds each asset once and ranks by cosine similarity.
//   - Natural-language search hands the text to an ai.QueryInterpreter and
//     runs a keyword search with the interpreted criteria.
//   - Facets count the full match set, not just the returned page.
//
// Suggestions draw on recently searched queries, query frequency, asset
// names, tags and catalog words, in that order.
package memory
