package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"credibly/internal/models"
	"credibly/internal/repositories/interfaces"
	"credibly/internal/utils"
	"credibly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStorageDown = utils.NewTransientStorageError(utils.ErrStorageUnavailable, errors.New("connection refused"))

func testLogger() *logger.Logger {
	return logger.NewNopLogger()
}

func page(params *utils.PaginationParams, n int) (int, int) {
	if params == nil {
		return 0, n
	}
	start := int(params.GetSkip())
	if start > n {
		start = n
	}
	end := start + int(params.GetLimit())
	if end > n {
		end = n
	}
	return start, end
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User

	// conflictsLeft makes the next UpdateAggregates calls report a version
	// conflict after bumping the version.
	conflictsLeft  int
	updateAggErr   error
	aggregateWrite int

	onInvalidate func(id primitive.ObjectID)
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) add(user *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	if user.Role == "" {
		user.Role = models.UserRoleUser
	}
	stored := *user
	r.users[user.ID] = &stored
	return user
}

func (r *fakeUserRepo) get(id primitive.ObjectID) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil
	}
	out := *user
	return &out
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return utils.NewConflictError(utils.ErrUserExists)
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if user := r.get(id); user != nil && user.DeletedAt == nil {
		return user, nil
	}
	return nil, utils.NewNotFoundError("user")
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, update *models.UserProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("user")
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Headline != nil {
		user.Headline = *update.Headline
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	out := *user
	return &out, nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return utils.NewNotFoundError("user")
	}
	user.Status = status
	return nil
}

func (r *fakeUserRepo) InvalidateCache(_ context.Context, id primitive.ObjectID) {
	if r.onInvalidate != nil {
		r.onInvalidate(id)
	}
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, utils.NewNotFoundError("user")
}

func (r *fakeUserRepo) GetByVerificationTokenHash(_ context.Context, tokenHash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if tokenHash != "" && user.VerificationTokenHash == tokenHash {
			out := *user
			return &out, nil
		}
	}
	return nil, utils.NewNotFoundError("user")
}

func (r *fakeUserRepo) SetVerificationToken(_ context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return utils.NewNotFoundError("user")
	}
	user.VerificationTokenHash = tokenHash
	user.VerificationExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return utils.NewNotFoundError("user")
	}
	user.Verified = true
	user.VerificationTokenHash = ""
	user.VerificationExpiresAt = nil
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (r *fakeUserRepo) GetAggregateVersion(_ context.Context, id primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return 0, utils.NewNotFoundError("user")
	}
	return user.AggregateVersion, nil
}

func (r *fakeUserRepo) UpdateAggregates(_ context.Context, id primitive.ObjectID, expectedVersion int64, averageRating float64, totalRatings int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateAggErr != nil {
		return r.updateAggErr
	}
	user, ok := r.users[id]
	if !ok {
		return utils.NewNotFoundError("user")
	}
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		user.AggregateVersion++
		return interfaces.ErrVersionConflict
	}
	if user.AggregateVersion != expectedVersion {
		return interfaces.ErrVersionConflict
	}
	user.AverageRating = averageRating
	user.TotalRatings = totalRatings
	user.AggregateVersion++
	r.aggregateWrite++
	return nil
}

func (r *fakeUserRepo) ListIDsWithAggregates(_ context.Context) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []primitive.ObjectID
	for id, user := range r.users {
		if user.TotalRatings > 0 || user.AverageRating != 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeUserRepo) List(_ context.Context, filter *models.UserFilter, params *utils.PaginationParams) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, user := range r.users {
		if filter != nil && filter.Status != "" && user.Status != filter.Status {
			continue
		}
		u := *user
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	start, end := page(params, len(out))
	return out[start:end], int64(len(out)), nil
}

func (r *fakeUserRepo) Count(ctx context.Context, filter *models.UserFilter) (int64, error) {
	_, total, err := r.List(ctx, filter, nil)
	return total, err
}

// fakeRatingRepo is an in-memory RatingRepository.
type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings map[primitive.ObjectID]*models.Rating
	// order keeps insertion order for newest-first listings.
	order []primitive.ObjectID

	computeErr error
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[primitive.ObjectID]*models.Rating)}
}

func (r *fakeRatingRepo) Create(_ context.Context, rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rating.ID = primitive.NewObjectID()
	rating.CreatedAt = time.Now()
	rating.UpdatedAt = rating.CreatedAt
	stored := *rating
	r.ratings[rating.ID] = &stored
	r.order = append(r.order, rating.ID)
	return nil
}

func (r *fakeRatingRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rating, ok := r.ratings[id]
	if !ok {
		return nil, utils.NewNotFoundError("rating")
	}
	out := *rating
	return &out, nil
}

func (r *fakeRatingRepo) Update(_ context.Context, rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ratings[rating.ID]; !ok {
		return utils.NewNotFoundError("rating")
	}
	stored := *rating
	r.ratings[rating.ID] = &stored
	return nil
}

func (r *fakeRatingRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ratings[id]; !ok {
		return utils.NewNotFoundError("rating")
	}
	delete(r.ratings, id)
	return nil
}

func (r *fakeRatingRepo) FindByPair(_ context.Context, raterID, ratedID primitive.ObjectID) (*models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rating := range r.ratings {
		if rating.RaterID == raterID && rating.RatedID == ratedID {
			out := *rating
			return &out, nil
		}
	}
	return nil, utils.NewNotFoundError("rating")
}

func (r *fakeRatingRepo) newestFirst(match func(*models.Rating) bool) []*models.Rating {
	var out []*models.Rating
	for i := len(r.order) - 1; i >= 0; i-- {
		rating, ok := r.ratings[r.order[i]]
		if ok && match(rating) {
			c := *rating
			out = append(out, &c)
		}
	}
	return out
}

func (r *fakeRatingRepo) ListForRatee(_ context.Context, ratedID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RatingWithRater, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.newestFirst(func(rt *models.Rating) bool { return rt.RatedID == ratedID })
	start, end := page(params, len(all))
	out := make([]*models.RatingWithRater, 0, end-start)
	for _, rating := range all[start:end] {
		out = append(out, &models.RatingWithRater{Rating: *rating})
	}
	return out, int64(len(all)), nil
}

func (r *fakeRatingRepo) ListByRater(_ context.Context, raterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rating, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.newestFirst(func(rt *models.Rating) bool { return rt.RaterID == raterID })
	start, end := page(params, len(all))
	return all[start:end], int64(len(all)), nil
}

func (r *fakeRatingRepo) ComputeAggregate(_ context.Context, ratedID primitive.ObjectID) (models.RatingAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.computeErr != nil {
		return models.RatingAggregate{}, r.computeErr
	}
	sum, count := 0, 0
	for _, rating := range r.ratings {
		if rating.RatedID == ratedID {
			sum += rating.Criteria.Overall
			count++
		}
	}
	if count == 0 {
		return models.RatingAggregate{}, nil
	}
	return models.RatingAggregate{AverageRating: float64(sum) / float64(count), TotalRatings: count}, nil
}

func (r *fakeRatingRepo) GetDistribution(_ context.Context, ratedID primitive.ObjectID) (map[int]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dist := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, rating := range r.ratings {
		if rating.RatedID == ratedID {
			dist[rating.Criteria.Overall]++
		}
	}
	return dist, nil
}

func (r *fakeRatingRepo) DistinctRatedIDs(_ context.Context) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, rating := range r.ratings {
		if _, ok := seen[rating.RatedID]; !ok {
			seen[rating.RatedID] = struct{}{}
			ids = append(ids, rating.RatedID)
		}
	}
	return ids, nil
}

func (r *fakeRatingRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.ratings)), nil
}

// insert stores a rating directly, bypassing the service.
func (r *fakeRatingRepo) insert(raterID, ratedID primitive.ObjectID, overall int) *models.Rating {
	rating := &models.Rating{
		RaterID:  raterID,
		RatedID:  ratedID,
		Criteria: models.RatingCriteria{Professionalism: overall, Timeliness: overall, Communication: overall, Overall: overall},
	}
	_ = r.Create(context.Background(), rating)
	return rating
}

// fakeBlockRepo is an in-memory BlockRepository.
type fakeBlockRepo struct {
	mu     sync.Mutex
	blocks []*models.Block

	existsErr error
}

func (r *fakeBlockRepo) Create(_ context.Context, block *models.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.blocks {
		if b.BlockerID == block.BlockerID && b.BlockedID == block.BlockedID {
			return utils.NewConflictError("user is already blocked")
		}
	}
	block.ID = primitive.NewObjectID()
	block.CreatedAt = time.Now()
	stored := *block
	r.blocks = append(r.blocks, &stored)
	return nil
}

func (r *fakeBlockRepo) Delete(_ context.Context, blockerID, blockedID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.blocks {
		if b.BlockerID == blockerID && b.BlockedID == blockedID {
			r.blocks = append(r.blocks[:i], r.blocks[i+1:]...)
			return nil
		}
	}
	return utils.NewNotFoundError("block")
}

func (r *fakeBlockRepo) Exists(_ context.Context, blockerID, blockedID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	for _, b := range r.blocks {
		if b.BlockerID == blockerID && b.BlockedID == blockedID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBlockRepo) IsBlockedEither(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	if blocked, _ := r.Exists(ctx, a, b); blocked {
		return true, nil
	}
	return r.Exists(ctx, b, a)
}

func (r *fakeBlockRepo) ListByBlocker(_ context.Context, blockerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Block, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Block
	for _, b := range r.blocks {
		if b.BlockerID == blockerID {
			c := *b
			out = append(out, &c)
		}
	}
	start, end := page(params, len(out))
	return out[start:end], int64(len(out)), nil
}

func (r *fakeBlockRepo) RelatedUserIDs(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []primitive.ObjectID
	for _, b := range r.blocks {
		switch userID {
		case b.BlockerID:
			ids = append(ids, b.BlockedID)
		case b.BlockedID:
			ids = append(ids, b.BlockerID)
		}
	}
	return ids, nil
}

// fakeConnectionRepo is an in-memory ConnectionRepository.
type fakeConnectionRepo struct {
	mu          sync.Mutex
	connections map[primitive.ObjectID]*models.Connection

	getByPairErr error
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{connections: make(map[primitive.ObjectID]*models.Connection)}
}

func (r *fakeConnectionRepo) Create(_ context.Context, connection *models.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	low, high := utils.OrderedPair(connection.RequesterID, connection.AddresseeID)
	for _, c := range r.connections {
		if c.UserLow == low && c.UserHigh == high {
			return utils.NewConflictError("a connection between these users already exists")
		}
	}
	connection.ID = primitive.NewObjectID()
	connection.UserLow, connection.UserHigh = low, high
	stored := *connection
	r.connections[connection.ID] = &stored
	return nil
}

func (r *fakeConnectionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.connections[id]
	if !ok {
		return nil, utils.NewNotFoundError("connection")
	}
	out := *c
	return &out, nil
}

func (r *fakeConnectionRepo) GetByPair(_ context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getByPairErr != nil {
		return nil, r.getByPairErr
	}
	low, high := utils.OrderedPair(a, b)
	for _, c := range r.connections {
		if c.UserLow == low && c.UserHigh == high {
			out := *c
			return &out, nil
		}
	}
	return nil, utils.NewNotFoundError("connection")
}

func (r *fakeConnectionRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.ConnectionStatus) (*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.connections[id]
	if !ok {
		return nil, utils.NewNotFoundError("connection")
	}
	c.Status = status
	out := *c
	return &out, nil
}

func (r *fakeConnectionRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.connections[id]; !ok {
		return utils.NewNotFoundError("connection")
	}
	delete(r.connections, id)
	return nil
}

func (r *fakeConnectionRepo) ListForUser(_ context.Context, userID primitive.ObjectID, status models.ConnectionStatus, params *utils.PaginationParams) ([]*models.Connection, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Connection
	for _, c := range r.connections {
		if c.Involves(userID) && (status == "" || c.Status == status) {
			cp := *c
			out = append(out, &cp)
		}
	}
	start, end := page(params, len(out))
	return out[start:end], int64(len(out)), nil
}

func (r *fakeConnectionRepo) AcceptedPeerIDs(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []primitive.ObjectID
	for _, c := range r.connections {
		if c.Involves(userID) && c.Status == models.ConnectionStatusAccepted {
			ids = append(ids, c.Other(userID))
		}
	}
	return ids, nil
}

// fakeActivityRepo records activities and can be made to fail.
type fakeActivityRepo struct {
	mu         sync.Mutex
	activities []*models.Activity
	err        error
}

func (r *fakeActivityRepo) Create(_ context.Context, activity *models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	activity.ID = primitive.NewObjectID()
	stored := *activity
	r.activities = append(r.activities, &stored)
	return nil
}

func (r *fakeActivityRepo) ListForUsers(_ context.Context, userIDs, excluded []primitive.ObjectID, params *utils.PaginationParams) ([]*models.Activity, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	contains := func(ids []primitive.ObjectID, id primitive.ObjectID) bool {
		for _, candidate := range ids {
			if candidate == id {
				return true
			}
		}
		return false
	}
	var out []*models.Activity
	for i := len(r.activities) - 1; i >= 0; i-- {
		a := r.activities[i]
		if !contains(userIDs, a.ActorID) && !contains(userIDs, a.SubjectID) {
			continue
		}
		if contains(excluded, a.ActorID) || contains(excluded, a.SubjectID) {
			continue
		}
		c := *a
		out = append(out, &c)
	}
	start, end := page(params, len(out))
	return out[start:end], int64(len(out)), nil
}

func (r *fakeActivityRepo) count(activityType models.ActivityType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.activities {
		if a.Type == activityType {
			n++
		}
	}
	return n
}

// fakeAuditRepo records audit entries.
type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	stored := *entry
	r.entries = append(r.entries, &stored)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start, end := page(params, len(r.entries))
	return r.entries[start:end], int64(len(r.entries)), nil
}

func (r *fakeAuditRepo) actions() []models.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditAction, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

// fakeReportRepo is an in-memory ReportRepository.
type fakeReportRepo struct {
	mu      sync.Mutex
	reports map[primitive.ObjectID]*models.Report
	failOn  models.ReportStatus
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[primitive.ObjectID]*models.Report)}
}

func (r *fakeReportRepo) Create(_ context.Context, report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	report.ID = primitive.NewObjectID()
	report.Open = report.Status.IsOpen()
	stored := *report
	r.reports[report.ID] = &stored
	return nil
}

func (r *fakeReportRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, utils.NewNotFoundError("report")
	}
	out := *report
	return &out, nil
}

func (r *fakeReportRepo) FindOpenByPair(_ context.Context, reporterID, reportedUserID primitive.ObjectID) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, report := range r.reports {
		if report.ReporterID == reporterID && report.ReportedUserID == reportedUserID && report.Open {
			out := *report
			return &out, nil
		}
	}
	return nil, utils.NewNotFoundError("report")
}

func (r *fakeReportRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, update *models.ReportStatusUpdate) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != "" && update.Status == r.failOn {
		return nil, errStorageDown
	}
	report, ok := r.reports[id]
	if !ok {
		return nil, utils.NewNotFoundError("report")
	}
	report.Status = update.Status
	report.Open = update.Status.IsOpen()
	report.AdminNote = update.AdminNote
	report.Action = update.Action
	if !report.Open {
		resolvedBy := update.ResolvedBy
		now := time.Now()
		report.ResolvedBy = &resolvedBy
		report.ResolvedAt = &now
	}
	out := *report
	return &out, nil
}

func (r *fakeReportRepo) List(_ context.Context, status models.ReportStatus, params *utils.PaginationParams) ([]*models.Report, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Report
	for _, report := range r.reports {
		if status == "" || report.Status == status {
			c := *report
			out = append(out, &c)
		}
	}
	start, end := page(params, len(out))
	return out[start:end], int64(len(out)), nil
}

func (r *fakeReportRepo) ListByReporter(_ context.Context, reporterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Report, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Report
	for _, report := range r.reports {
		if report.ReporterID == reporterID {
			c := *report
			out = append(out, &c)
		}
	}
	start, end := page(params, len(out))
	return out[start:end], int64(len(out)), nil
}

func (r *fakeReportRepo) CountOpen(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, report := range r.reports {
		if report.Open {
			n++
		}
	}
	return n, nil
}

// directTransactor runs fn without a transaction.
type directTransactor struct{}

func (directTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordingSender captures outgoing emails.
type recordingSender struct {
	mu     sync.Mutex
	emails []sentEmail
}

type sentEmail struct {
	To, Subject, Body string
}

func (s *recordingSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = append(s.emails, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (s *recordingSender) last() (sentEmail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.emails) == 0 {
		return sentEmail{}, false
	}
	return s.emails[len(s.emails)-1], true
}
