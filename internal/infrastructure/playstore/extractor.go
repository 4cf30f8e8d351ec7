// Package playstore fetches and parses Google Play review pages.
package playstore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
	"ReviewPulse/internal/source"
)

const (
	baseURL = "https://play.google.com/store/apps/details"

	// Review bodies shorter than this carry no analyzable signal.
	minBodyLength = 15
)

var ratingExpr = regexp.MustCompile(`(\d)\s*(?:star|out of)`)

// Extractor downloads the review section of a Play Store listing and turns
// review cards into domain reviews.
type Extractor struct {
	client  *http.Client
	baseURL string
}

var _ source.Extractor = (*Extractor)(nil)

// NewExtractor wires an HTTP client; a nil client gets a 20s timeout default.
func NewExtractor(client *http.Client) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Extractor{client: client, baseURL: baseURL}
}

// Name identifies the strategy inside the registry.
func (e *Extractor) Name() string {
	return "playstore"
}

// ParseAppID extracts the package id from a Play Store listing URL.
func ParseAppID(listing string) (string, error) {
	parsed, err := url.Parse(listing)
	if err != nil {
		return "", fmt.Errorf("parse listing url: %w", err)
	}
	id := parsed.Query().Get("id")
	if id == "" {
		return "", fmt.Errorf("listing url %s has no id parameter", listing)
	}
	return id, nil
}

// Fetch downloads the listing page and returns reviews inside the requested
// date range, optionally sampled per rating bucket.
func (e *Extractor) Fetch(ctx context.Context, req ports.FetchRequest) ([]domain.Review, error) {
	if req.AppID == "" {
		return nil, fmt.Errorf("app id is required")
	}

	doc, err := e.fetchDocument(ctx, req.AppID)
	if err != nil {
		return nil, fmt.Errorf("app %s: %w", req.AppID, err)
	}

	reviews := e.extractReviews(doc, req.StartDate, req.EndDate)
	if req.SamplesPerRating > 0 {
		reviews = sampleByRating(reviews, req.SamplesPerRating)
	}

	return reviews, nil
}

func (e *Extractor) fetchDocument(ctx context.Context, appID string) (*goquery.Document, error) {
	pageURL := fmt.Sprintf("%s?id=%s&showAllReviews=true", e.baseURL, url.QueryEscape(appID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ReviewPulse/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("play store returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (e *Extractor) extractReviews(doc *goquery.Document, start, end time.Time) []domain.Review {
	var collected []domain.Review

	doc.Find("div[data-review-id]").Each(func(i int, card *goquery.Selection) {
		review, err := parseCard(card)
		if err != nil {
			return
		}

		day := review.Date.UTC().Truncate(24 * time.Hour)
		if !start.IsZero() && day.Before(start.UTC().Truncate(24*time.Hour)) {
			return
		}
		if !end.IsZero() && day.After(end.UTC().Truncate(24*time.Hour)) {
			return
		}
		if len([]rune(review.Text)) < minBodyLength {
			return
		}

		collected = append(collected, review)
	})

	return collected
}

func parseCard(card *goquery.Selection) (domain.Review, error) {
	var review domain.Review

	review.ID, _ = card.Attr("data-review-id")

	label, _ := card.Find("div[role=\"img\"]").First().Attr("aria-label")
	rating, err := parseRating(label)
	if err != nil {
		return review, err
	}
	review.Rating = rating

	review.Author = strings.TrimSpace(card.Find(".review-author").First().Text())
	review.Title = strings.TrimSpace(card.Find(".review-title").First().Text())
	review.Text = strings.TrimSpace(card.Find(".review-body").First().Text())
	if review.Text == "" {
		return review, fmt.Errorf("review %s has no body", review.ID)
	}

	dateText := strings.TrimSpace(card.Find(".review-date").First().Text())
	date, err := parseDate(dateText)
	if err != nil {
		return review, err
	}
	review.Date = date

	return review, review.Validate()
}

func parseRating(label string) (int, error) {
	match := ratingExpr.FindStringSubmatch(label)
	if match == nil {
		return 0, fmt.Errorf("cannot read rating from %q", label)
	}
	rating, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, fmt.Errorf("parse rating: %w", err)
	}
	return rating, nil
}

func parseDate(text string) (time.Time, error) {
	for _, layout := range []string{"January 2, 2006", "Jan 2, 2006", "2006-01-02"} {
		if date, err := time.Parse(layout, text); err == nil {
			return date.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse review date %q", text)
}

// sampleByRating keeps at most perRating newest reviews for every star bucket
// so a flood of one-star reviews cannot drown out the rest.
func sampleByRating(reviews []domain.Review, perRating int) []domain.Review {
	byRating := map[int][]domain.Review{}
	for _, review := range reviews {
		byRating[review.Rating] = append(byRating[review.Rating], review)
	}

	var sampled []domain.Review
	for rating := 1; rating <= 5; rating++ {
		bucket := byRating[rating]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Date.After(bucket[j].Date)
		})
		if len(bucket) > perRating {
			bucket = bucket[:perRating]
		}
		sampled = append(sampled, bucket...)
	}

	sort.SliceStable(sampled, func(i, j int) bool {
		return sampled[i].Date.After(sampled[j].Date)
	})
	return sampled
}
