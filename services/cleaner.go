package services

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"metastore-scraper/models"
	"metastore-scraper/utils"
)

// DescriptionPlaceholder is stored when no description could be found.
const DescriptionPlaceholder = "No description available."

var (
	// ratingRegexp captures "4.7 stars", "4.5/5" and similar
	ratingRegexp = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(?:star|/\s*5)`)
	// reviewRegexp captures "1,234 reviews", "12345 ratings" and similar
	reviewRegexp = regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})+|\d+)\s*(?:review|rating)`)
)

// Cleaner normalises extracted records before they leave the scraper.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean enforces the record invariants and drops later duplicates of an id.
func (c *Cleaner) Clean(records []*models.Record) []*models.Record {
	seen := make(map[string]struct{})
	result := make([]*models.Record, 0, len(records))

	for _, r := range records {
		if r == nil {
			continue
		}
		r.ID = strings.TrimSpace(r.ID)
		if r.ID == "" {
			c.logger.Warn("[cleaner] Dropping record with empty id: %s", r.SourceURL)
			continue
		}
		if _, dup := seen[r.ID]; dup {
			c.logger.Debug("[cleaner] Duplicate id skipped: %s (%s)", r.ID, r.SourceURL)
			continue
		}
		seen[r.ID] = struct{}{}

		r.Name = NormaliseText(r.Name)
		if r.Name == "" {
			r.Name = Humanize(r.ID)
		}
		r.Description = NormaliseText(r.Description)
		if r.Description == "" {
			r.Description = DescriptionPlaceholder
		}
		r.Category = NormaliseText(r.Category)
		if r.Category == "" {
			r.Category = InferCategory(r.SourceURL, r.Name)
		}
		if r.Rating < 0 || r.Rating > 5 {
			r.Rating = 0
		}
		if r.ReviewCount < 0 {
			r.ReviewCount = 0
		}

		result = append(result, r)
	}

	if dropped := len(records) - len(result); dropped > 0 {
		c.logger.Info("[cleaner] Cleaned %d → %d records (dropped %d)", len(records), len(result), dropped)
	}
	return result
}

// ParseRating extracts a star rating from text. Values outside [0, 5] are
// treated as absent.
func ParseRating(text string) (float64, bool) {
	match := ratingRegexp.FindStringSubmatch(text)
	if len(match) < 2 {
		return 0, false
	}
	val, err := strconv.ParseFloat(match[1], 64)
	if err != nil || val < 0 || val > 5 {
		return 0, false
	}
	return val, true
}

// ParseReviewCount extracts a review count such as "1,234 reviews".
func ParseReviewCount(text string) (int, bool) {
	match := reviewRegexp.FindStringSubmatch(text)
	if len(match) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", ""))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// IDFromURL returns the last non-empty path segment of rawURL.
func IDFromURL(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	segments := strings.Split(strings.TrimRight(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(segments[i]); s != "" {
			return s
		}
	}
	return ""
}

// Humanize turns a slug like "beat-saber" into "Beat Saber".
func Humanize(id string) string {
	words := strings.Fields(strings.ReplaceAll(id, "-", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// InferCategory guesses a coarse category when the page names none.
func InferCategory(sourceURL, name string) string {
	if strings.Contains(strings.ToLower(sourceURL), "game") || strings.Contains(strings.ToLower(name), "game") {
		return "Game"
	}
	return "App"
}

// NormaliseText strips leading/trailing whitespace and collapses internal whitespace.
func NormaliseText(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// RuneLen counts characters rather than bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
