// Package chunker divides extracted document text into token-budget chunks
// for embedding and retrieval.
//
// # Basic Usage
//
//	c := chunker.New(512, 64)
//	chunks := c.Split("/docs/notes.md", text)
//
//	for _, chunk := range chunks {
//	    fmt.Printf("chunk %d: %d tokens\n", chunk.Index, chunk.TokenCount)
//	}
//
// # Chunking Strategy
//
// Text is tokenized with the cl100k_base encoding and sliced into windows
// of at most chunkSize tokens; consecutive windows share overlap tokens so
// sentences straddling a boundary stay searchable from both sides.
//
// Token tables are bundled into the binary through an offline BPE loader,
// so chunking needs no network access and no cache directory. When the
// tokenizer cannot initialize, the chunker falls back to a chars/4 token
// estimate with rune-aligned windows.
//
// # Determinism
//
// Chunk IDs derive from the source path and chunk index, so re-splitting
// the same file produces chunks whose store writes overwrite the previous
// generation instead of duplicating it.
package chunker
