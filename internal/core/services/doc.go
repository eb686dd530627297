// Package services implements the application core: the ingestion
// pipeline, the hybrid search service and the watch loop. Services
// depend only on domain types and ports.
package services
