package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"credibly/internal/middleware"
	"credibly/internal/models"
	"credibly/internal/services"
	"credibly/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockRatingService struct {
	mock.Mock
}

func (m *mockRatingService) Create(ctx context.Context, caller *services.Caller, input *services.RatingInput) (*models.Rating, error) {
	args := m.Called(ctx, caller, input)
	rating, _ := args.Get(0).(*models.Rating)
	return rating, args.Error(1)
}

func (m *mockRatingService) Update(ctx context.Context, caller *services.Caller, ratingID primitive.ObjectID, patch *services.RatingPatch) (*models.Rating, error) {
	args := m.Called(ctx, caller, ratingID, patch)
	rating, _ := args.Get(0).(*models.Rating)
	return rating, args.Error(1)
}

func (m *mockRatingService) Delete(ctx context.Context, caller *services.Caller, ratingID primitive.ObjectID) error {
	return m.Called(ctx, caller, ratingID).Error(0)
}

func (m *mockRatingService) Get(ctx context.Context, ratingID primitive.ObjectID) (*models.Rating, error) {
	args := m.Called(ctx, ratingID)
	rating, _ := args.Get(0).(*models.Rating)
	return rating, args.Error(1)
}

func (m *mockRatingService) ListForRatee(ctx context.Context, rateeID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RatingWithRater, int64, error) {
	args := m.Called(ctx, rateeID, params)
	ratings, _ := args.Get(0).([]*models.RatingWithRater)
	return ratings, args.Get(1).(int64), args.Error(2)
}

func (m *mockRatingService) ListMine(ctx context.Context, caller *services.Caller, params *utils.PaginationParams) ([]*models.Rating, int64, error) {
	args := m.Called(ctx, caller, params)
	ratings, _ := args.Get(0).([]*models.Rating)
	return ratings, args.Get(1).(int64), args.Error(2)
}

func (m *mockRatingService) Summary(ctx context.Context, userID primitive.ObjectID) (*models.RatingSummary, error) {
	args := m.Called(ctx, userID)
	summary, _ := args.Get(0).(*models.RatingSummary)
	return summary, args.Error(1)
}

func newRatingRouter(svc services.RatingService, caller *services.Caller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if caller != nil {
			c.Set(middleware.CallerKey, caller)
		}
		c.Next()
	})

	h := NewRatingHandler(svc, 1000)
	router.POST("/ratings", h.CreateRating)
	router.GET("/ratings", h.ListRatings)
	router.PATCH("/ratings/:id", h.UpdateRating)
	router.DELETE("/ratings/:id", h.DeleteRating)
	return router
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func ratingBody(ratedID primitive.ObjectID, score int) map[string]interface{} {
	return map[string]interface{}{
		"ratedUserId": ratedID.Hex(),
		"criteria": map[string]int{
			"professionalism": score,
			"timeliness":      score,
			"communication":   score,
		},
		"comment": "Delivered on time",
	}
}

func TestRatingHandler_Create_Validation(t *testing.T) {
	caller := &services.Caller{UserID: primitive.NewObjectID(), Role: models.UserRoleUser}
	ratedID := primitive.NewObjectID()

	tests := []struct {
		score      int
		wantStatus int
	}{
		{0, http.StatusBadRequest},
		{1, http.StatusCreated},
		{5, http.StatusCreated},
		{6, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score %d", tt.score), func(t *testing.T) {
			svc := &mockRatingService{}
			if tt.wantStatus == http.StatusCreated {
				svc.On("Create", mock.Anything, caller, mock.MatchedBy(func(in *services.RatingInput) bool {
					return in.RatedID == ratedID && in.Criteria.Professionalism == tt.score && in.Criteria.Overall == 0
				})).Return(&models.Rating{ID: primitive.NewObjectID(), RaterID: caller.UserID, RatedID: ratedID}, nil).Once()
			}
			router := newRatingRouter(svc, caller)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, jsonRequest(http.MethodPost, "/ratings", ratingBody(ratedID, tt.score)))

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
			if tt.wantStatus == http.StatusBadRequest {
				svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
				assert.Contains(t, w.Body.String(), "criteria.professionalism")
			}
		})
	}
}

func TestRatingHandler_Create_RaterMismatch(t *testing.T) {
	caller := &services.Caller{UserID: primitive.NewObjectID()}
	svc := &mockRatingService{}
	router := newRatingRouter(svc, caller)

	body := ratingBody(primitive.NewObjectID(), 4)
	body["raterUserId"] = primitive.NewObjectID().Hex()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/ratings", body))

	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestRatingHandler_Create_ErrorMapping(t *testing.T) {
	caller := &services.Caller{UserID: primitive.NewObjectID()}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"self rating", utils.NewValidationError("you cannot rate yourself", nil), http.StatusBadRequest},
		{"blocked", utils.NewAuthorizationError("you cannot rate this user"), http.StatusForbidden},
		{"missing ratee", utils.NewNotFoundError("user"), http.StatusNotFound},
		{"duplicate", utils.NewConflictError("you have already rated this user"), http.StatusConflict},
		{"storage down", utils.NewTransientStorageError(utils.ErrStorageUnavailable, context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"deadline", utils.NewTimeoutError(context.DeadlineExceeded), http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRatingService{}
			svc.On("Create", mock.Anything, caller, mock.Anything).Return(nil, tt.err)
			router := newRatingRouter(svc, caller)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, jsonRequest(http.MethodPost, "/ratings", ratingBody(primitive.NewObjectID(), 3)))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusServiceUnavailable {
				assert.NotEmpty(t, w.Header().Get("Retry-After"))
			}
		})
	}
}

func TestRatingHandler_Create_RequiresCaller(t *testing.T) {
	router := newRatingRouter(&mockRatingService{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/ratings", ratingBody(primitive.NewObjectID(), 3)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRatingHandler_ListRatings(t *testing.T) {
	ratedID := primitive.NewObjectID()
	svc := &mockRatingService{}
	svc.On("ListForRatee", mock.Anything, ratedID, mock.AnythingOfType("*utils.PaginationParams")).
		Return([]*models.RatingWithRater{{Rating: models.Rating{ID: primitive.NewObjectID(), RatedID: ratedID}}}, int64(1), nil)
	router := newRatingRouter(svc, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ratings?ratedUserId="+ratedID.Hex()+"&limit=5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Ratings []models.Rating `json:"ratings"`
		} `json:"data"`
		Meta utils.Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Ratings, 1)
	assert.Equal(t, 5, resp.Meta.Pagination.Limit)
	assert.Equal(t, int64(1), resp.Meta.Pagination.Total)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ratings", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRatingHandler_UpdateRating(t *testing.T) {
	caller := &services.Caller{UserID: primitive.NewObjectID()}
	ratingID := primitive.NewObjectID()
	svc := &mockRatingService{}
	svc.On("Update", mock.Anything, caller, ratingID, mock.MatchedBy(func(p *services.RatingPatch) bool {
		return p.Timeliness != nil && *p.Timeliness == 2 && p.Professionalism == nil && p.Comment == nil
	})).Return(&models.Rating{ID: ratingID}, nil).Once()
	router := newRatingRouter(svc, caller)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPatch, "/ratings/"+ratingID.Hex(), map[string]interface{}{
		"criteria": map[string]int{"timeliness": 2},
	}))
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPatch, "/ratings/"+ratingID.Hex(), map[string]interface{}{}))
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty patch")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPatch, "/ratings/not-an-id", map[string]interface{}{"comment": "x"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRatingHandler_DeleteRating(t *testing.T) {
	caller := &services.Caller{UserID: primitive.NewObjectID()}
	ratingID := primitive.NewObjectID()
	svc := &mockRatingService{}
	svc.On("Delete", mock.Anything, caller, ratingID).Return(utils.NewAuthorizationError("only the rater or an admin can delete this rating")).Once()
	router := newRatingRouter(svc, caller)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/ratings/"+ratingID.Hex(), nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertExpectations(t)
}
