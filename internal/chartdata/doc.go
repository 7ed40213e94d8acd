// Package chartdata holds the data-shaping helpers that sit between backend
// payloads and chart configurations: pairing coordinate arrays, ordering
// records by a numeric field, reducing axis limits, bucketing values into bins
// and selecting prediction runs by scenario.
package chartdata
