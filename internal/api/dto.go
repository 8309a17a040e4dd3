package api

import (
	"github.com/coursekit/coursekit/internal/calendar"
	"github.com/coursekit/coursekit/internal/holidays"
	"github.com/coursekit/coursekit/internal/index"
	"github.com/coursekit/coursekit/internal/site"
)

// PostView is a material with its deadline (aliased from the site layer).
type PostView = site.PostView

// PostListResponse wraps the visible materials.
type PostListResponse struct {
	Posts []PostView `json:"posts" validate:"required"`
	Total int        `json:"total" example:"12" validate:"required"`
}

// TagListResponse wraps the visible tags.
type TagListResponse struct {
	Tags []string `json:"tags" example:"cmsc-124,lab" validate:"required"`
}

// HolidayListResponse wraps holidays in a range.
type HolidayListResponse struct {
	Holidays []holidays.Holiday `json:"holidays" validate:"required"`
}

// CalendarResponse wraps projected events and their month grouping.
type CalendarResponse struct {
	Events []calendar.Event `json:"events" validate:"required"`
	Months []calendar.Month `json:"months" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}
