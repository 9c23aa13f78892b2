// Package catalog renders tool/equipment catalogs as paginated PDF documents.
//
// Each catalog row becomes one table row with an image thumbnail, a code and
// a wrapped description. The column header repeats on every page. Rows are
// produced by ingestion adapters (see the sources package) and handed to
// Renderer fully materialized, with image references already resolved into
// raw bytes.
package catalog
