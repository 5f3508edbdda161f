// Package markdown classifies the lightweight markdown subset returned by the
// story extraction service: up to three heading levels and **bold** runs.
//
// Every raw line maps to exactly one ClassifiedLine. Nothing is cached; the
// display and both exporters reclassify the text each time they need it.
package markdown
