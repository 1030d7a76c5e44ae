package metastore

import "metastore-scraper/models"

// seedLinks are known-good item pages used when discovery finds nothing.
var seedLinks = []string{
	"https://www.meta.com/experiences/ghostbusters-rise-of-the-ghost-lord/4746232908818706/",
	"https://www.meta.com/experiences/among-us-vr/4948428055244413/",
	"https://www.meta.com/experiences/assassins-creed-nexus-vr/5812519008825194/",
	"https://www.meta.com/experiences/asgards-wrath-2/2603836099654226/",
}

// SeedLinks returns up to limit seed item URLs.
func SeedLinks(limit int) []string {
	if limit > len(seedLinks) {
		limit = len(seedLinks)
	}
	if limit < 0 {
		limit = 0
	}
	return append([]string(nil), seedLinks[:limit]...)
}

// DemoRecords returns the fixed synthetic records used when a run extracts
// nothing. Each call returns fresh values.
func DemoRecords() []*models.Record {
	return []*models.Record{
		{
			ID:          "beat-saber",
			Name:        "Beat Saber",
			ImageURL:    "https://example.com/images/beat-saber.jpg",
			Rating:      4.9,
			ReviewCount: 15423,
			Description: "Beat Saber is a VR rhythm game where you slash the beats of adrenaline-pumping music as they fly towards you, surrounded by a futuristic world.",
			Category:    "Music & Rhythm",
			SourceURL:   "https://www.meta.com/quest/experiences/beat-saber/",
		},
		{
			ID:          "superhot-vr",
			Name:        "SUPERHOT VR",
			ImageURL:    "https://example.com/images/superhot-vr.jpg",
			Rating:      4.7,
			ReviewCount: 8756,
			Description: "SUPERHOT VR is the award-winning, first-person shooter where time moves only when you move. No regenerating health bars. No conveniently placed ammo drops.",
			Category:    "Action",
			SourceURL:   "https://www.meta.com/quest/experiences/superhot-vr/",
		},
	}
}
