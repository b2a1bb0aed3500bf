package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/roohithbala/placement/model"
	"github.com/roohithbala/placement/utils/cache"
	"github.com/roohithbala/placement/utils/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrExperienceNotFound covers both "no such experience" and "not
	// owned by the caller". POLICY: conflated so the API does not leak
	// which ids exist.
	ErrExperienceNotFound = errors.New("experience not found")

	// ErrDuplicateExperience rejects a second report by the same author
	// for the same company and interview month. Advisory check only, not
	// a database constraint; two racing requests can still both pass it.
	ErrDuplicateExperience = errors.New("duplicate experience for this company and month")
)

const (
	statsCacheKey = "placement:platform_stats"
	statsCacheTTL = 5 * time.Minute
)

// BrowseQuery carries the filter, sort and pagination criteria for the
// public listing. Zero values impose no constraint.
type BrowseQuery struct {
	Search        string
	Batches       []string
	Companies     []string
	Outcomes      []string
	Season        string
	MinDifficulty int
	Sort          string // newest (default), oldest, rating, views
	Page          int
	Limit         int
}

// BrowseItem is one listing row: the metadata annotated with satellite
// counts, never the satellite payloads themselves.
type BrowseItem struct {
	model.ExperienceMetadata
	RoundsCount    int `json:"rounds_count"`
	MaterialsCount int `json:"materials_count"`
}

// AuthorInfo is the display identity attached to an experience detail.
type AuthorInfo struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Batch    string `json:"batch,omitempty"`
}

// ExperienceDetail is one full report: metadata, author identity and the
// complete round and material lists.
type ExperienceDetail struct {
	model.ExperienceMetadata
	Author    AuthorInfo            `json:"author"`
	Rounds    []model.RoundEntry    `json:"rounds"`
	Materials []model.MaterialEntry `json:"materials"`
}

// MetadataInput is the caller-supplied experience header.
type MetadataInput struct {
	CompanyName             string
	RoleAppliedFor          string
	InterviewMonth          string
	InterviewYear           int
	Batch                   string
	Outcome                 string
	PlacementSeason         string
	OverallExperienceRating int
	DifficultyRating        int
}

// PlatformStats summarizes the portal for the landing page.
type PlatformStats struct {
	TotalExperiences int64 `json:"total_experiences"`
	TotalCompanies   int64 `json:"total_companies"`
	TotalQuestions   int64 `json:"total_questions"`
	TotalMentors     int64 `json:"total_mentors"`
	TotalMaterials   int64 `json:"total_materials"`
}

// ExperienceService owns the experience report lifecycle and the public
// listing aggregation.
type ExperienceService struct {
	db    *gorm.DB
	cache *cache.RedisCache // nil when Redis is unavailable
}

// NewExperienceService creates a new experience service.
func NewExperienceService(db *gorm.DB, redisCache *cache.RedisCache) *ExperienceService {
	return &ExperienceService{
		db:    db,
		cache: redisCache,
	}
}

// SaveMetadata creates a new draft or, when id is non-nil, updates an
// experience the caller owns. Creation applies the advisory duplicate
// check on (owner, company, interview month).
func (s *ExperienceService) SaveMetadata(ctx context.Context, userID uint, id *uint, input MetadataInput) (*model.ExperienceMetadata, error) {
	if id != nil {
		var experience model.ExperienceMetadata
		err := s.db.WithContext(ctx).
			Where("id = ? AND user_id = ?", *id, userID).
			First(&experience).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrExperienceNotFound
			}
			return nil, err
		}

		experience.CompanyName = input.CompanyName
		experience.RoleAppliedFor = input.RoleAppliedFor
		experience.InterviewMonth = input.InterviewMonth
		experience.InterviewYear = input.InterviewYear
		experience.Batch = input.Batch
		experience.Outcome = input.Outcome
		experience.PlacementSeason = input.PlacementSeason
		experience.OverallExperienceRating = input.OverallExperienceRating
		experience.DifficultyRating = input.DifficultyRating

		if err := s.db.WithContext(ctx).Save(&experience).Error; err != nil {
			return nil, err
		}
		return &experience, nil
	}

	if input.CompanyName != "" && input.InterviewMonth != "" {
		var count int64
		err := s.db.WithContext(ctx).Model(&model.ExperienceMetadata{}).
			Where("user_id = ? AND company_name = ? AND interview_month = ?",
				userID, input.CompanyName, input.InterviewMonth).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicateExperience
		}
	}

	experience := model.ExperienceMetadata{
		UserID:                  userID,
		CompanyName:             input.CompanyName,
		RoleAppliedFor:          input.RoleAppliedFor,
		InterviewMonth:          input.InterviewMonth,
		InterviewYear:           input.InterviewYear,
		Batch:                   input.Batch,
		Outcome:                 input.Outcome,
		PlacementSeason:         input.PlacementSeason,
		OverallExperienceRating: input.OverallExperienceRating,
		DifficultyRating:        input.DifficultyRating,
		Status:                  model.ExperienceStatusDraft,
	}

	if err := s.db.WithContext(ctx).Create(&experience).Error; err != nil {
		return nil, err
	}
	return &experience, nil
}

// SaveRounds replaces the whole round list of an experience the caller
// owns. Creates the satellite row on first save.
func (s *ExperienceService) SaveRounds(ctx context.Context, userID, experienceID uint, rounds []model.RoundEntry) error {
	if err := s.ensureOwnership(ctx, userID, experienceID); err != nil {
		return err
	}

	if rounds == nil {
		rounds = []model.RoundEntry{}
	}
	payload, err := json.Marshal(rounds)
	if err != nil {
		return err
	}

	row := model.ExperienceRound{
		ExperienceID: experienceID,
		UserID:       userID,
		Rounds:       payload,
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "experience_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "rounds", "updated_at"}),
	}).Create(&row).Error
}

// SaveMaterials replaces the whole material list of an experience the
// caller owns. Same upsert semantics as SaveRounds.
func (s *ExperienceService) SaveMaterials(ctx context.Context, userID, experienceID uint, materials []model.MaterialEntry) error {
	if err := s.ensureOwnership(ctx, userID, experienceID); err != nil {
		return err
	}

	if materials == nil {
		materials = []model.MaterialEntry{}
	}
	payload, err := json.Marshal(materials)
	if err != nil {
		return err
	}

	row := model.ExperienceMaterial{
		ExperienceID: experienceID,
		UserID:       userID,
		Materials:    payload,
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "experience_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "materials", "updated_at"}),
	}).Create(&row).Error
}

// Submit moves an experience the caller owns into the moderation queue.
func (s *ExperienceService) Submit(ctx context.Context, userID, experienceID uint) (*model.ExperienceMetadata, error) {
	var experience model.ExperienceMetadata
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", experienceID, userID).
		First(&experience).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExperienceNotFound
		}
		return nil, err
	}

	experience.Status = model.ExperienceStatusPending
	if err := s.db.WithContext(ctx).Save(&experience).Error; err != nil {
		return nil, err
	}
	return &experience, nil
}

// SetStatus applies a moderation decision to a pending experience.
func (s *ExperienceService) SetStatus(ctx context.Context, experienceID uint, status string) error {
	if status != model.ExperienceStatusApproved && status != model.ExperienceStatusRejected {
		return fmt.Errorf("invalid moderation status: %s", status)
	}

	result := s.db.WithContext(ctx).Model(&model.ExperienceMetadata{}).
		Where("id = ? AND status = ?", experienceID, model.ExperienceStatusPending).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrExperienceNotFound
	}
	return nil
}

// ListByStatus pages through experiences in a given lifecycle state, for
// the moderation queue.
func (s *ExperienceService) ListByStatus(ctx context.Context, status string, page, limit int) ([]model.ExperienceMetadata, response.PaginationMeta, error) {
	query := s.db.WithContext(ctx).Model(&model.ExperienceMetadata{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, response.PaginationMeta{}, err
	}

	pagination := response.CalculatePagination(page, limit, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var experiences []model.ExperienceMetadata
	err := query.Order("created_at ASC").
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&experiences).Error
	if err != nil {
		return nil, response.PaginationMeta{}, err
	}

	return experiences, pagination, nil
}

// Delete removes an experience the caller owns together with its round
// and material satellites, in one transaction.
func (s *ExperienceService) Delete(ctx context.Context, userID, experienceID uint) error {
	if err := s.ensureOwnership(ctx, userID, experienceID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("experience_id = ?", experienceID).
			Delete(&model.ExperienceRound{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().
			Where("experience_id = ?", experienceID).
			Delete(&model.ExperienceMaterial{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().
			Where("id = ?", experienceID).
			Delete(&model.ExperienceMetadata{}).Error
	})
}

// ListMine returns all of the caller's experiences, newest first.
func (s *ExperienceService) ListMine(ctx context.Context, userID uint) ([]model.ExperienceMetadata, error) {
	var experiences []model.ExperienceMetadata
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&experiences).Error
	return experiences, err
}

// LatestDraft returns the caller's most recently touched draft with its
// satellites, or nil when no draft exists.
func (s *ExperienceService) LatestDraft(ctx context.Context, userID uint) (*ExperienceDetail, error) {
	var experience model.ExperienceMetadata
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.ExperienceStatusDraft).
		Order("updated_at DESC").
		First(&experience).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	rounds, materials, err := s.loadSatellites(ctx, experience.ID)
	if err != nil {
		return nil, err
	}

	return &ExperienceDetail{
		ExperienceMetadata: experience,
		Rounds:             rounds,
		Materials:          materials,
	}, nil
}

// Browse produces the paginated public listing. Each page row carries
// rounds_count and materials_count derived from the satellite rows
// without returning the satellite payloads.
func (s *ExperienceService) Browse(ctx context.Context, q BrowseQuery) ([]BrowseItem, response.PaginationMeta, error) {
	query := s.db.WithContext(ctx).Model(&model.ExperienceMetadata{})

	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("LOWER(company_name) LIKE ? OR LOWER(role_applied_for) LIKE ?", like, like)
	}
	if len(q.Batches) > 0 {
		query = query.Where("batch IN ?", q.Batches)
	}
	if len(q.Companies) > 0 {
		query = query.Where("company_name IN ?", q.Companies)
	}
	if len(q.Outcomes) > 0 {
		query = query.Where("outcome IN ?", q.Outcomes)
	}
	if q.Season != "" {
		query = query.Where("placement_season = ?", q.Season)
	}
	if q.MinDifficulty > 0 {
		query = query.Where("difficulty_rating >= ?", q.MinDifficulty)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, response.PaginationMeta{}, err
	}

	pagination := response.CalculatePagination(q.Page, q.Limit, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var page []model.ExperienceMetadata
	err := query.Order(browseOrder(q.Sort)).
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&page).Error
	if err != nil {
		return nil, response.PaginationMeta{}, err
	}

	items, err := s.annotateCounts(ctx, page)
	if err != nil {
		return nil, response.PaginationMeta{}, err
	}

	return items, pagination, nil
}

func browseOrder(sort string) string {
	switch sort {
	case "oldest":
		return "created_at ASC"
	case "rating":
		return "overall_experience_rating DESC"
	case "views":
		return "views DESC"
	default:
		return "created_at DESC"
	}
}

// annotateCounts resolves rounds_count/materials_count for one page of
// metadata rows. Only the JSON lists of the page's satellites are read,
// and only their lengths survive.
func (s *ExperienceService) annotateCounts(ctx context.Context, page []model.ExperienceMetadata) ([]BrowseItem, error) {
	items := make([]BrowseItem, len(page))
	if len(page) == 0 {
		return items, nil
	}

	ids := make([]uint, len(page))
	for i, e := range page {
		ids[i] = e.ID
		items[i] = BrowseItem{ExperienceMetadata: e}
	}

	var roundRows []model.ExperienceRound
	if err := s.db.WithContext(ctx).
		Where("experience_id IN ?", ids).
		Find(&roundRows).Error; err != nil {
		return nil, err
	}
	roundCounts := make(map[uint]int, len(roundRows))
	for _, row := range roundRows {
		roundCounts[row.ExperienceID] = jsonListLen(row.Rounds)
	}

	var materialRows []model.ExperienceMaterial
	if err := s.db.WithContext(ctx).
		Where("experience_id IN ?", ids).
		Find(&materialRows).Error; err != nil {
		return nil, err
	}
	materialCounts := make(map[uint]int, len(materialRows))
	for _, row := range materialRows {
		materialCounts[row.ExperienceID] = jsonListLen(row.Materials)
	}

	for i := range items {
		items[i].RoundsCount = roundCounts[items[i].ID]
		items[i].MaterialsCount = materialCounts[items[i].ID]
	}

	return items, nil
}

func jsonListLen(payload []byte) int {
	if len(payload) == 0 {
		return 0
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(payload, &entries); err != nil {
		return 0
	}
	return len(entries)
}

// GetDetail fetches one full experience with its author identity. Views
// are counted with an atomic in-database increment, and only for
// approved experiences.
func (s *ExperienceService) GetDetail(ctx context.Context, experienceID uint) (*ExperienceDetail, error) {
	var experience model.ExperienceMetadata
	err := s.db.WithContext(ctx).First(&experience, experienceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExperienceNotFound
		}
		return nil, err
	}

	author, err := s.resolveAuthor(ctx, experience.UserID)
	if err != nil {
		return nil, err
	}

	rounds, materials, err := s.loadSatellites(ctx, experience.ID)
	if err != nil {
		return nil, err
	}

	if experience.IsApproved() {
		err := s.db.WithContext(ctx).Model(&model.ExperienceMetadata{}).
			Where("id = ?", experience.ID).
			UpdateColumn("views", gorm.Expr("views + 1")).Error
		if err != nil {
			return nil, err
		}
		experience.Views++
	}

	return &ExperienceDetail{
		ExperienceMetadata: experience,
		Author:             author,
		Rounds:             rounds,
		Materials:          materials,
	}, nil
}

// ListRecent returns the newest experiences regardless of status.
func (s *ExperienceService) ListRecent(ctx context.Context, page, limit int) ([]model.ExperienceMetadata, response.PaginationMeta, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.ExperienceMetadata{}).Count(&total).Error; err != nil {
		return nil, response.PaginationMeta{}, err
	}

	pagination := response.CalculatePagination(page, limit, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var experiences []model.ExperienceMetadata
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&experiences).Error
	if err != nil {
		return nil, response.PaginationMeta{}, err
	}

	return experiences, pagination, nil
}

// ListApprovedByCompany returns approved experiences for one company.
func (s *ExperienceService) ListApprovedByCompany(ctx context.Context, company string) ([]model.ExperienceMetadata, error) {
	var experiences []model.ExperienceMetadata
	err := s.db.WithContext(ctx).
		Where("company_name = ? AND status = ?", company, model.ExperienceStatusApproved).
		Order("created_at DESC").
		Find(&experiences).Error
	return experiences, err
}

// ListApprovedByBatch returns approved experiences for one batch.
func (s *ExperienceService) ListApprovedByBatch(ctx context.Context, batch string) ([]model.ExperienceMetadata, error) {
	var experiences []model.ExperienceMetadata
	err := s.db.WithContext(ctx).
		Where("batch = ? AND status = ?", batch, model.ExperienceStatusApproved).
		Order("created_at DESC").
		Find(&experiences).Error
	return experiences, err
}

// Options returns the distinct companies and roles seen so far, sorted,
// for the browse filter dropdowns.
func (s *ExperienceService) Options(ctx context.Context) (companies []string, roles []string, err error) {
	err = s.db.WithContext(ctx).Model(&model.ExperienceMetadata{}).
		Distinct("company_name").
		Where("company_name <> ''").
		Order("company_name ASC").
		Pluck("company_name", &companies).Error
	if err != nil {
		return nil, nil, err
	}

	err = s.db.WithContext(ctx).Model(&model.ExperienceMetadata{}).
		Distinct("role_applied_for").
		Where("role_applied_for <> ''").
		Order("role_applied_for ASC").
		Pluck("role_applied_for", &roles).Error
	if err != nil {
		return nil, nil, err
	}

	return companies, roles, nil
}

// GetPlatformStats aggregates the landing-page numbers, served from the
// Redis cache when fresh.
func (s *ExperienceService) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	if s.cache != nil {
		var cached PlatformStats
		if err := s.cache.GetJSON(ctx, statsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.computePlatformStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
			log.Printf("Failed to cache platform stats: %v", err)
		}
	}

	return stats, nil
}

// WarmPlatformStatsCache recomputes the stats and refreshes the cache.
// Called from the hourly cron job.
func (s *ExperienceService) WarmPlatformStatsCache(ctx context.Context) (*PlatformStats, error) {
	stats, err := s.computePlatformStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func (s *ExperienceService) computePlatformStats(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.ExperienceMetadata{}).Count(&stats.TotalExperiences).Error; err != nil {
		return nil, err
	}

	var companies []string
	if err := db.Model(&model.ExperienceMetadata{}).
		Distinct("company_name").
		Where("company_name <> ''").
		Pluck("company_name", &companies).Error; err != nil {
		return nil, err
	}
	stats.TotalCompanies = int64(len(companies))

	if err := db.Model(&model.Question{}).Count(&stats.TotalQuestions).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Profile{}).
		Where("willing_to_mentor = ?", true).
		Count(&stats.TotalMentors).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.ExperienceMaterial{}).Count(&stats.TotalMaterials).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *ExperienceService) ensureOwnership(ctx context.Context, userID, experienceID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.ExperienceMetadata{}).
		Where("id = ? AND user_id = ?", experienceID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrExperienceNotFound
	}
	return nil
}

func (s *ExperienceService) loadSatellites(ctx context.Context, experienceID uint) ([]model.RoundEntry, []model.MaterialEntry, error) {
	rounds := []model.RoundEntry{}
	materials := []model.MaterialEntry{}

	var roundRow model.ExperienceRound
	err := s.db.WithContext(ctx).
		Where("experience_id = ?", experienceID).
		First(&roundRow).Error
	if err == nil {
		if len(roundRow.Rounds) > 0 {
			if err := json.Unmarshal(roundRow.Rounds, &rounds); err != nil {
				return nil, nil, err
			}
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	var materialRow model.ExperienceMaterial
	err = s.db.WithContext(ctx).
		Where("experience_id = ?", experienceID).
		First(&materialRow).Error
	if err == nil {
		if len(materialRow.Materials) > 0 {
			if err := json.Unmarshal(materialRow.Materials, &materials); err != nil {
				return nil, nil, err
			}
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	return rounds, materials, nil
}

// resolveAuthor builds the display identity for an experience: profile
// full name first, then the email local part, then a generic placeholder.
func (s *ExperienceService) resolveAuthor(ctx context.Context, userID uint) (AuthorInfo, error) {
	author := AuthorInfo{ID: userID, FullName: "Anonymous User"}

	var user model.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return author, nil
		}
		return author, err
	}

	author.Email = user.Email

	var profile model.Profile
	err = s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err == nil && profile.FullName != "" {
		author.FullName = profile.FullName
		author.Batch = profile.Batch
		return author, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return author, err
	}

	if user.Email != "" {
		author.FullName = strings.SplitN(user.Email, "@", 2)[0]
	}

	return author, nil
}
