package render

import "kyon/internal/ingest"

// Reading reports the body size of one compiled document.
type Reading struct {
	Words   int
	Minutes int
}

func EstimateReading(body string, override float64) Reading {
	return Reading{
		Words:   ingest.CountWords(body),
		Minutes: ingest.ReadingTime(body, override),
	}
}
