package application_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	"github.com/devtrail/bootcamp-api/pkg/mailer"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

func listDefaults() query.ListParams {
	return query.ListParams{
		Filter: map[string]any{},
		Page:   query.DefaultPage,
		Limit:  query.DefaultLimit,
	}
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeUserRepo is an in-memory UserRepository keyed by object id hex.
type fakeUserRepo struct {
	mu         sync.Mutex
	users      map[string]*entity.User
	listResult query.ListResult
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	u.CreatedAt = time.Now().UTC()
	cp := *u
	f.users[u.ID.Hex()] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	cp.Password = ""
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			cp.Password = ""
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByEmailWithPassword(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByResetToken(_ context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ResetPasswordToken == tokenHash && u.ResetPasswordExpire.After(now) {
			cp := *u
			cp.Password = ""
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) UpdateFields(_ context.Context, id string, fields map[string]any) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "email":
			email := v.(string)
			for oid, other := range f.users {
				if oid != id && other.Email == email {
					return nil, repo.ErrDuplicate
				}
			}
			u.Email = email
		case "role":
			u.Role = v.(string)
		case "image":
			u.Image = v.(string)
		case "password":
			u.Password = v.(string)
		case "resetPasswordToken":
			if v == nil {
				u.ResetPasswordToken = ""
			} else {
				u.ResetPasswordToken = v.(string)
			}
		case "resetPasswordExpire":
			if v == nil {
				u.ResetPasswordExpire = time.Time{}
			} else {
				u.ResetPasswordExpire = v.(time.Time)
			}
		}
	}
	cp := *u
	cp.Password = ""
	return &cp, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _ query.ListParams) (query.ListResult, error) {
	return f.listResult, nil
}

// stored returns the raw stored document, password hash included.
func (f *fakeUserRepo) stored(id string) *entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

type radiusCall struct {
	lng, lat, radians float64
}

// fakeBootcampRepo is an in-memory BootcampRepository. It mirrors the partial
// unique index on owner-locked bootcamps.
type fakeBootcampRepo struct {
	mu           sync.Mutex
	bootcamps    map[string]*entity.Bootcamp
	aggregates   map[string]map[string]float64
	cascaded     []string
	radiusCalls  []radiusCall
	withinResult []entity.Bootcamp
	listParams   query.ListParams
	listPopulate *repo.Populate
	listResult   query.ListResult
}

func newFakeBootcampRepo() *fakeBootcampRepo {
	return &fakeBootcampRepo{
		bootcamps:  map[string]*entity.Bootcamp{},
		aggregates: map[string]map[string]float64{},
	}
}

func (f *fakeBootcampRepo) Create(_ context.Context, b *entity.Bootcamp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.OwnerLocked {
		for _, existing := range f.bootcamps {
			if existing.OwnerLocked && existing.User == b.User {
				return repo.ErrDuplicate
			}
		}
	}
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	b.CreatedAt = time.Now().UTC()
	cp := *b
	f.bootcamps[b.ID.Hex()] = &cp
	return nil
}

func (f *fakeBootcampRepo) GetByID(_ context.Context, id string) (*entity.Bootcamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bootcamps[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBootcampRepo) ListByOwner(_ context.Context, userID string) ([]entity.Bootcamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Bootcamp
	for _, b := range f.bootcamps {
		if b.User.Hex() == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBootcampRepo) UpdateFields(_ context.Context, id string, fields map[string]any) (*entity.Bootcamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bootcamps[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			b.Name = v.(string)
		case "slug":
			b.Slug = v.(string)
		case "description":
			b.Description = v.(string)
		case "website":
			b.Website = v.(string)
		case "phone":
			b.Phone = v.(string)
		case "email":
			b.Email = v.(string)
		case "careers":
			b.Careers = v.([]string)
		case "photo":
			b.Photo = v.(string)
		case "location":
			b.Location = v.(*entity.GeoPoint)
		case "housing":
			b.Housing = v.(bool)
		case "jobAssistance":
			b.JobAssistance = v.(bool)
		case "jobGuarantee":
			b.JobGuarantee = v.(bool)
		case "acceptGi":
			b.AcceptGi = v.(bool)
		}
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBootcampRepo) UpdateAggregates(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bootcamps[id]; !ok {
		return repo.ErrNotFound
	}
	agg := f.aggregates[id]
	if agg == nil {
		agg = map[string]float64{}
		f.aggregates[id] = agg
	}
	for k, v := range fields {
		agg[k] = v.(float64)
	}
	return nil
}

func (f *fakeBootcampRepo) DeleteCascade(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bootcamps[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.bootcamps, id)
	f.cascaded = append(f.cascaded, id)
	return nil
}

func (f *fakeBootcampRepo) WithinRadius(_ context.Context, lng, lat, radians float64) ([]entity.Bootcamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.radiusCalls = append(f.radiusCalls, radiusCall{lng: lng, lat: lat, radians: radians})
	return f.withinResult, nil
}

func (f *fakeBootcampRepo) List(_ context.Context, params query.ListParams, populate *repo.Populate) (query.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listParams = params
	f.listPopulate = populate
	return f.listResult, nil
}

func (f *fakeBootcampRepo) aggregate(id, field string) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	agg, ok := f.aggregates[id]
	if !ok {
		return 0, false
	}
	v, ok := agg[field]
	return v, ok
}

// fakeCourseRepo is an in-memory CourseRepository.
type fakeCourseRepo struct {
	mu           sync.Mutex
	courses      map[string]*entity.Course
	listPopulate *repo.Populate
	listResult   query.ListResult
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[string]*entity.Course{}}
}

func (f *fakeCourseRepo) Create(_ context.Context, c *entity.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.MinimumSkill == "" {
		c.MinimumSkill = entity.SkillBeginner
	}
	c.CreatedAt = time.Now().UTC()
	cp := *c
	f.courses[c.ID.Hex()] = &cp
	return nil
}

func (f *fakeCourseRepo) GetByID(_ context.Context, id string) (*entity.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourseRepo) ListByBootcamp(_ context.Context, bootcampID string) ([]entity.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Course
	for _, c := range f.courses {
		if c.Bootcamp.Hex() == bootcampID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) UpdateFields(_ context.Context, id string, fields map[string]any) (*entity.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			c.Title = v.(string)
		case "description":
			c.Description = v.(string)
		case "weeks":
			c.Weeks = v.(int)
		case "tuition":
			c.Tuition = v.(float64)
		case "minimumSkill":
			c.MinimumSkill = v.(string)
		case "scholarshipAvailable":
			c.ScholarshipAvailable = v.(bool)
		}
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeCourseRepo) AverageTuition(_ context.Context, bootcampID string) (float64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	var n int
	for _, c := range f.courses {
		if c.Bootcamp.Hex() == bootcampID {
			sum += c.Tuition
			n++
		}
	}
	if n == 0 {
		return 0, false, nil
	}
	return sum / float64(n), true, nil
}

func (f *fakeCourseRepo) List(_ context.Context, _ query.ListParams, populate *repo.Populate) (query.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listPopulate = populate
	return f.listResult, nil
}

// fakeReviewRepo is an in-memory ReviewRepository mirroring the unique
// (bootcamp, user) index.
type fakeReviewRepo struct {
	mu           sync.Mutex
	reviews      map[string]*entity.Review
	listPopulate *repo.Populate
	listResult   query.ListResult
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[string]*entity.Review{}}
}

func (f *fakeReviewRepo) Create(_ context.Context, r *entity.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reviews {
		if existing.Bootcamp == r.Bootcamp && existing.User == r.User {
			return repo.ErrDuplicate
		}
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.CreatedAt = time.Now().UTC()
	cp := *r
	f.reviews[r.ID.Hex()] = &cp
	return nil
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id string) (*entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviewRepo) ListByBootcamp(_ context.Context, bootcampID string) ([]entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Review
	for _, r := range f.reviews {
		if r.Bootcamp.Hex() == bootcampID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) UpdateFields(_ context.Context, id string, fields map[string]any) (*entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			r.Title = v.(string)
		case "text":
			r.Text = v.(string)
		case "rating":
			r.Rating = v.(float64)
		}
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepo) AverageRating(_ context.Context, bootcampID string) (float64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	var n int
	for _, r := range f.reviews {
		if r.Bootcamp.Hex() == bootcampID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, false, nil
	}
	return sum / float64(n), true, nil
}

func (f *fakeReviewRepo) List(_ context.Context, _ query.ListParams, populate *repo.Populate) (query.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listPopulate = populate
	return f.listResult, nil
}

// fakeUpgradeRepo is an in-memory UpgradeRequestRepository enforcing one
// request per user.
type fakeUpgradeRepo struct {
	mu           sync.Mutex
	requests     map[string]*entity.UpgradeRequest
	listPopulate *repo.Populate
	listResult   query.ListResult
}

func newFakeUpgradeRepo() *fakeUpgradeRepo {
	return &fakeUpgradeRepo{requests: map[string]*entity.UpgradeRequest{}}
}

func (f *fakeUpgradeRepo) Create(_ context.Context, r *entity.UpgradeRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.requests {
		if existing.User == r.User {
			return repo.ErrDuplicate
		}
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.Role == "" {
		r.Role = entity.RolePublisher
	}
	if r.Status == "" {
		r.Status = entity.StatusPending
	}
	r.CreatedAt = time.Now().UTC()
	cp := *r
	f.requests[r.ID.Hex()] = &cp
	return nil
}

func (f *fakeUpgradeRepo) GetByID(_ context.Context, id string) (*entity.UpgradeRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeUpgradeRepo) ListByUser(_ context.Context, userID string) ([]entity.UpgradeRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.UpgradeRequest
	for _, r := range f.requests {
		if r.User.Hex() == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeUpgradeRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.requests[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.requests, id)
	return nil
}

func (f *fakeUpgradeRepo) List(_ context.Context, _ query.ListParams, populate *repo.Populate) (query.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listPopulate = populate
	return f.listResult, nil
}

// queueRecorder captures published email jobs, failing when err is set.
type queueRecorder struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (q *queueRecorder) PublishJSON(_ context.Context, body any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	if job, ok := body.(mailer.EmailJob); ok {
		q.jobs = append(q.jobs, job)
	}
	return nil
}

type sentMail struct {
	to, subject, text, html string
}

// mailRecorder captures synchronous sends, failing when err is set.
type mailRecorder struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *mailRecorder) Send(_ context.Context, to, subject, text, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, text: text, html: html})
	return nil
}
