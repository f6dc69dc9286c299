// Package pipeline implements the concurrent fetch-validate-extract pipeline.
// It screens raw URLs through syntax validation and a liveness probe, fetches
// the survivors concurrently with retry, extracts title/paragraph records, and
// flattens everything into a single ordered dataset.
package pipeline
