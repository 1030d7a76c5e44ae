package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"metastore-scraper/models"
	"metastore-scraper/utils"
)

// SummaryService computes and prints an overview of a scraped batch.
type SummaryService struct {
	logger *utils.Logger
	out    io.Writer
}

// NewSummaryService creates a SummaryService printing to stdout.
func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger, out: os.Stdout}
}

// WithOutput redirects Print.
func (s *SummaryService) WithOutput(w io.Writer) *SummaryService {
	s.out = w
	return s
}

func (s *SummaryService) Generate(batch *models.Batch) *models.CatalogSummary {
	summary := &models.CatalogSummary{
		RecordsByCategory: make(map[string]int),
	}
	if batch == nil {
		return summary
	}
	summary.Mode = batch.Mode

	if len(batch.Records) == 0 {
		return summary
	}

	summary.TotalRecords = len(batch.Records)

	var rated []*models.Record
	var ratingTotal float64

	for _, r := range batch.Records {
		if r.Rating > 0 {
			rated = append(rated, r)
			ratingTotal += r.Rating
		}
		summary.TotalReviews += r.ReviewCount
		if summary.MostReviewed == nil || r.ReviewCount > summary.MostReviewed.ReviewCount {
			summary.MostReviewed = r
		}
		if r.Category != "" {
			summary.RecordsByCategory[r.Category]++
		}
	}

	summary.RatedRecords = len(rated)
	if len(rated) > 0 {
		summary.AverageRating = round2(ratingTotal / float64(len(rated)))
	}
	if summary.MostReviewed != nil && summary.MostReviewed.ReviewCount == 0 {
		summary.MostReviewed = nil
	}

	// Top 5 by rating, reviews break ties
	sort.SliceStable(rated, func(i, j int) bool {
		if rated[i].Rating != rated[j].Rating {
			return rated[i].Rating > rated[j].Rating
		}
		return rated[i].ReviewCount > rated[j].ReviewCount
	})
	if len(rated) > 5 {
		summary.TopRated = rated[:5]
	} else {
		summary.TopRated = rated
	}

	s.logger.Debug("[summary] %d records, %d rated, %d categories",
		summary.TotalRecords, summary.RatedRecords, len(summary.RecordsByCategory))
	return summary
}

func (s *SummaryService) Print(r *models.CatalogSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)
	w := s.out

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🥽 META QUEST CATALOG SUMMARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Records scraped : \033[1m%d\033[0m\n", r.TotalRecords)
	fmt.Fprintf(w, "  Batch mode      : \033[1m%s\033[0m\n", r.Mode)
	if r.Mode == models.ModeFallbackDemo {
		fmt.Fprintf(w, "  \033[1;31mNo live records were extracted; these are demo records.\033[0m\n")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Ratings\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.RatedRecords > 0 {
		fmt.Fprintf(w, "  Rated records  : \033[1m%d\033[0m\n", r.RatedRecords)
		fmt.Fprintf(w, "  Average rating : \033[1;32m%.2f ★\033[0m\n", r.AverageRating)
		fmt.Fprintf(w, "  Total reviews  : \033[1m%d\033[0m\n", r.TotalReviews)
	} else {
		fmt.Fprintf(w, "  No rating data available\n")
	}
	fmt.Fprintln(w)

	if r.MostReviewed != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Reviewed\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostReviewed.Name, 50))
		fmt.Fprintf(w, "  Category : %s\n", r.MostReviewed.Category)
		fmt.Fprintf(w, "  Reviews  : \033[1;36m%d\033[0m\n", r.MostReviewed.ReviewCount)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Top 5 Highest Rated Apps\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Fprintf(w, "  No rated apps found\n")
	} else {
		for i, rec := range r.TopRated {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m%.2f ★\033[0m\n",
				i+1, truncate(rec.Name, 38), rec.Rating)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Apps by Category\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.RecordsByCategory) == 0 {
		fmt.Fprintf(w, "  No category data\n")
	} else {
		type catCount struct {
			cat   string
			count int
		}
		var cats []catCount
		for cat, cnt := range r.RecordsByCategory {
			cats = append(cats, catCount{cat, cnt})
		}
		sort.Slice(cats, func(i, j int) bool {
			if cats[i].count != cats[j].count {
				return cats[i].count > cats[j].count
			}
			return cats[i].cat < cats[j].cat
		})
		for _, cc := range cats {
			bar := strings.Repeat("█", cc.count)
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(cc.cat, 28), bar, cc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
