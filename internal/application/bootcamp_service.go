package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	"github.com/devtrail/bootcamp-api/pkg/geocoder"
	"github.com/devtrail/bootcamp-api/pkg/helpers"
	"github.com/devtrail/bootcamp-api/pkg/query"
	"github.com/devtrail/bootcamp-api/pkg/uploads"
)

// earthRadiusMiles converts a distance in miles to radians for sphere-cap
// geo queries.
const earthRadiusMiles = 3963.2

// BootcampService owns the bootcamp lifecycle: geocoded creation, advanced
// listing, ownership-checked mutation, cascading deletion, radius search,
// photo upload and full-text search.
type BootcampService struct {
	Bootcamps repo.BootcampRepository
	Geocoder  *geocoder.Client
	Uploads   uploads.Store
	Redis     *redis.Client
	Logger    *logrus.Logger
	ES        *elasticsearch.Client
	ESIndex   string
	MaxUpload int64
}

func NewBootcampService(bootcamps repo.BootcampRepository, geo *geocoder.Client, store uploads.Store, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esIndex string, maxUpload int64) *BootcampService {
	return &BootcampService{
		Bootcamps: bootcamps,
		Geocoder:  geo,
		Uploads:   store,
		Redis:     rdb,
		Logger:    logger,
		ES:        es,
		ESIndex:   esIndex,
		MaxUpload: maxUpload,
	}
}

type BootcampInput struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	Website       string   `json:"website" binding:"omitempty,url"`
	Phone         string   `json:"phone" binding:"omitempty,max=20"`
	Email         string   `json:"email" binding:"omitempty,email"`
	Address       string   `json:"address" binding:"required"`
	Careers       []string `json:"careers" binding:"required,min=1"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee"`
	AcceptGi      bool     `json:"acceptGi"`
}

// Create geocodes the address and stores the bootcamp. Non-admin owners are
// limited to one bootcamp by a storage-level constraint, so two concurrent
// creates cannot both slip through.
func (s *BootcampService) Create(ctx context.Context, actor *entity.User, in BootcampInput) (*entity.Bootcamp, error) {
	loc, err := s.locate(ctx, in.Address)
	if err != nil {
		return nil, err
	}
	b := &entity.Bootcamp{
		Name:          in.Name,
		Slug:          slugify(in.Name),
		Description:   in.Description,
		Website:       in.Website,
		Phone:         in.Phone,
		Email:         in.Email,
		Location:      loc,
		Careers:       in.Careers,
		Housing:       in.Housing,
		JobAssistance: in.JobAssistance,
		JobGuarantee:  in.JobGuarantee,
		AcceptGi:      in.AcceptGi,
		User:          actor.ID,
		OwnerLocked:   actor.Role != entity.RoleAdmin,
	}
	if err := s.Bootcamps.Create(ctx, b); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrBootcampExists
		}
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

// List runs the advanced query pipeline with courses inlined per bootcamp.
func (s *BootcampService) List(ctx context.Context, params query.ListParams) (query.ListResult, error) {
	populate := &repo.Populate{
		From:         "courses",
		ForeignField: "bootcamp",
		As:           "courses",
		Select:       []string{"title", "description", "tuition", "minimumSkill"},
	}
	return s.Bootcamps.List(ctx, params, populate)
}

func (s *BootcampService) Get(ctx context.Context, id string) (*entity.Bootcamp, error) {
	b, err := s.Bootcamps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetByOwner lists the bootcamps created by a user.
func (s *BootcampService) GetByOwner(ctx context.Context, userID string) ([]entity.Bootcamp, error) {
	return s.Bootcamps.ListByOwner(ctx, userID)
}

type BootcampUpdateInput struct {
	Name          string   `json:"name" binding:"omitempty"`
	Description   string   `json:"description" binding:"omitempty"`
	Website       string   `json:"website" binding:"omitempty,url"`
	Phone         string   `json:"phone" binding:"omitempty,max=20"`
	Email         string   `json:"email" binding:"omitempty,email"`
	Address       string   `json:"address" binding:"omitempty"`
	Careers       []string `json:"careers" binding:"omitempty,min=1"`
	Housing       *bool    `json:"housing"`
	JobAssistance *bool    `json:"jobAssistance"`
	JobGuarantee  *bool    `json:"jobGuarantee"`
	AcceptGi      *bool    `json:"acceptGi"`
}

// Update applies a partial update after the ownership check. A changed
// address is re-geocoded.
func (s *BootcampService) Update(ctx context.Context, actor *entity.User, id string, in BootcampUpdateInput) (*entity.Bootcamp, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, b.User.Hex()); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != "" {
		fields["name"] = in.Name
		fields["slug"] = slugify(in.Name)
	}
	if in.Description != "" {
		fields["description"] = in.Description
	}
	if in.Website != "" {
		fields["website"] = in.Website
	}
	if in.Phone != "" {
		fields["phone"] = in.Phone
	}
	if in.Email != "" {
		fields["email"] = in.Email
	}
	if in.Address != "" {
		loc, err := s.locate(ctx, in.Address)
		if err != nil {
			return nil, err
		}
		fields["location"] = loc
	}
	if len(in.Careers) > 0 {
		fields["careers"] = in.Careers
	}
	if in.Housing != nil {
		fields["housing"] = *in.Housing
	}
	if in.JobAssistance != nil {
		fields["jobAssistance"] = *in.JobAssistance
	}
	if in.JobGuarantee != nil {
		fields["jobGuarantee"] = *in.JobGuarantee
	}
	if in.AcceptGi != nil {
		fields["acceptGi"] = *in.AcceptGi
	}
	if len(fields) == 0 {
		return nil, ErrValidation
	}

	updated, err := s.Bootcamps.UpdateFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.index(ctx, updated)
	return updated, nil
}

// Delete removes the bootcamp along with its courses and reviews.
func (s *BootcampService) Delete(ctx context.Context, actor *entity.User, id string) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(actor, b.User.Hex()); err != nil {
		return err
	}
	if err := s.Bootcamps.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.deindex(ctx, id)
	return nil
}

// WithinRadius finds bootcamps within distance miles of a zipcode.
func (s *BootcampService) WithinRadius(ctx context.Context, zipcode string, distance float64) ([]entity.Bootcamp, error) {
	if distance <= 0 {
		return nil, ErrValidation
	}
	loc, err := s.locate(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	return s.Bootcamps.WithinRadius(ctx, loc.Coordinates[0], loc.Coordinates[1], distance/earthRadiusMiles)
}

// UploadPhoto stores an uploaded image as the bootcamp's photo.
func (s *BootcampService) UploadPhoto(ctx context.Context, actor *entity.User, id, filename, contentType string, size int64, r io.Reader) (*entity.Bootcamp, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, b.User.Hex()); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrValidation
	}
	if s.MaxUpload > 0 && size > s.MaxUpload {
		return nil, ErrValidation
	}

	name := "photo_" + b.ID.Hex() + strings.ToLower(filepath.Ext(filename))
	path, err := s.Uploads.Save(ctx, name, contentType, r)
	if err != nil {
		return nil, err
	}
	updated, err := s.Bootcamps.UpdateFields(ctx, id, map[string]any{"photo": path})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Search runs a full-text query over indexed bootcamps. Without a configured
// search backend it returns an empty result instead of failing.
func (s *BootcampService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "description", "careers"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(body)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		doc := h.Source
		if doc == nil {
			doc = map[string]any{}
		}
		doc["id"] = h.ID
		out = append(out, doc)
	}
	return out, nil
}

const geoCacheTTL = 24 * time.Hour

// locate resolves an address through the geocoder, caching results in Redis
// since addresses and zipcodes never move.
func (s *BootcampService) locate(ctx context.Context, address string) (*entity.GeoPoint, error) {
	cacheKey := "geo:" + strings.ToLower(strings.TrimSpace(address))
	if s.Redis != nil {
		var cached entity.GeoPoint
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, cacheKey, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	loc, err := s.Geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, geocoder.ErrNoResults) {
			return nil, ErrValidation
		}
		s.Logger.WithError(err).Warn("geocoding failed")
		return nil, ErrUpstream
	}
	point := &entity.GeoPoint{
		Type:             "Point",
		Coordinates:      []float64{loc.Lng, loc.Lat},
		FormattedAddress: loc.FormattedAddress,
		City:             loc.City,
		State:            loc.State,
		Zipcode:          loc.Zipcode,
		Country:          loc.Country,
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, cacheKey, point, geoCacheTTL); err != nil {
			s.Logger.WithError(err).Debug("geocode cache write failed")
		}
	}
	return point, nil
}

// index mirrors the bootcamp into the search index, best effort.
func (s *BootcampService) index(ctx context.Context, b *entity.Bootcamp) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"name":        b.Name,
		"slug":        b.Slug,
		"description": b.Description,
		"careers":     b.Careers,
	}
	body, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: b.ID.Hex(), Body: strings.NewReader(string(body)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("bootcamp", b.ID.Hex()).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("bootcamp", b.ID.Hex()).Warn("es index response error")
	}
}

func (s *BootcampService) deindex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("bootcamp", id).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}

// requireOwner allows the resource owner and any admin through.
func requireOwner(actor *entity.User, ownerID string) error {
	if actor.Role == entity.RoleAdmin {
		return nil
	}
	if actor.ID.Hex() != ownerID {
		return ErrForbidden
	}
	return nil
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var sb strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && sb.Len() > 0 {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
