package rest

import (
	"time"

	"ReadLater/internal/domain"
)

type itemResponse struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Status      string     `json:"status"`
	Title       *string    `json:"title"`
	Content     *string    `json:"content"`
	OGImage     *string    `json:"ogImage"`
	Author      *string    `json:"author"`
	PublishedAt *time.Time `json:"publishedAt"`
	Summary     *string    `json:"summary"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toItemResponse(item domain.SavedItem) itemResponse {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return itemResponse{
		ID:          item.ID,
		URL:         item.URL,
		Status:      string(item.Status),
		Title:       item.Title,
		Content:     item.Content,
		OGImage:     item.OGImage,
		Author:      item.Author,
		PublishedAt: item.PublishedAt,
		Summary:     item.Summary,
		Tags:        tags,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

type createItemRequest struct {
	URL string `json:"url"`
}

type bulkImportRequest struct {
	URLs []string `json:"urls"`
}

type bulkDoneEvent struct {
	domain.BulkSummary
	Message string `json:"message"`
}

type saveSummaryRequest struct {
	Summary string `json:"summary"`
}

type mapRequest struct {
	URL    string `json:"url"`
	Search string `json:"search"`
}

type mapResponse struct {
	Links []string `json:"links"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Results []domain.SearchResult `json:"results"`
}
