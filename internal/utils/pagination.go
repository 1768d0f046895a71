package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PaginationParams struct {
	Page   int    `json:"page" form:"page"`
	Limit  int    `json:"limit" form:"limit"`
	Sort   string `json:"sort" form:"sort"`
	Order  string `json:"order" form:"order"`
	Search string `json:"search" form:"search"`
}

type PaginationMeta struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// GetPaginationParams reads page, limit, order and search from the query
// string and clamps them. Sorting is always by created_at; callers that
// need another field set Sort explicitly.
func GetPaginationParams(c *gin.Context) *PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))

	return NewPaginationParams(page, limit, c.DefaultQuery("order", "desc"), c.Query("search"))
}

func NewPaginationParams(page, limit int, order, search string) *PaginationParams {
	if page < 1 {
		page = 1
	}
	if limit < MinPageSize {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	return &PaginationParams{
		Page:   page,
		Limit:  limit,
		Sort:   "created_at",
		Order:  order,
		Search: search,
	}
}

func (p *PaginationParams) GetSkip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

func (p *PaginationParams) GetLimit() int64 {
	return int64(p.Limit)
}

func (p *PaginationParams) SortDirection() int {
	if p.Order == "asc" {
		return 1
	}
	return -1
}

// GetSortOptions sorts by the configured field with _id as a tiebreaker so
// pages are stable when timestamps collide.
func (p *PaginationParams) GetSortOptions() *options.FindOptions {
	return options.Find().
		SetSkip(p.GetSkip()).
		SetLimit(p.GetLimit()).
		SetSort(p.SortDocument())
}

func (p *PaginationParams) SortDocument() bson.D {
	dir := p.SortDirection()
	return bson.D{{Key: p.Sort, Value: dir}, {Key: "_id", Value: dir}}
}

func CreatePaginationMeta(params *PaginationParams, total int64) *PaginationMeta {
	totalPages := int(math.Ceil(float64(total) / float64(params.Limit)))

	return &PaginationMeta{
		Page:        params.Page,
		Limit:       params.Limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     params.Page < totalPages,
		HasPrevious: params.Page > 1,
	}
}
