package router

import (
	app "github.com/devtrail/bootcamp-api/internal/application"
	"github.com/devtrail/bootcamp-api/internal/container"
	"github.com/devtrail/bootcamp-api/internal/infrastructure/mongodb"
	handlers "github.com/devtrail/bootcamp-api/internal/interface/http"
	"github.com/devtrail/bootcamp-api/internal/router/modules"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

// InitModules builds repositories, services, and handlers from the container
// singletons and registers every feature module with the router registry.
// It returns the recomputer so main can start its worker.
func InitModules(r *Registry) *app.AggregateRecomputer {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	db := container.GetMongoDB()

	users := mongodb.NewUserRepository(db)
	bootcamps := mongodb.NewBootcampRepository(container.GetMongo(), db)
	courses := mongodb.NewCourseRepository(db)
	reviews := mongodb.NewReviewRepository(db)
	upgrades := mongodb.NewUpgradeRequestRepository(db)

	recompute := app.NewAggregateRecomputer(bootcamps, courses, reviews, logger)

	var policy *query.FieldPolicy
	if allowed := append(cfg.SelectAllowed(), cfg.SortAllowed()...); len(allowed) > 0 {
		policy = query.NewFieldPolicy(allowed)
	}

	// Interface fields stay nil when the backing client is unconfigured, so
	// the services' nil checks keep working.
	var sender app.MailSender
	if mg := container.GetMailgun(); mg != nil {
		sender = mg
	}
	var emailQueue app.EmailPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		emailQueue = pub
	}

	authSvc := app.NewAuthService(users, sender, emailQueue, logger, cfg.FrontendURL, cfg.AppName)
	userSvc := app.NewUserService(users)
	bootcampSvc := app.NewBootcampService(bootcamps, container.GetGeocoder(), container.GetUploadStore(),
		container.GetRedis(), logger, container.GetES(), cfg.ESBootcampsIndex, cfg.MaxFileUpload)
	courseSvc := app.NewCourseService(courses, bootcamps, recompute)
	reviewSvc := app.NewReviewService(reviews, bootcamps, recompute)
	upgradeSvc := app.NewUpgradeService(upgrades, users, emailQueue, logger, cfg.AppName)

	authH := handlers.NewAuthHandler(authSvc, container.GetJWT(), logger, container.GetCookies())
	userH := handlers.NewUserHandler(userSvc, policy, logger)
	bootcampH := handlers.NewBootcampHandler(bootcampSvc, policy, logger)
	courseH := handlers.NewCourseHandler(courseSvc, policy, logger)
	reviewH := handlers.NewReviewHandler(reviewSvc, policy, logger)
	upgradeH := handlers.NewUpgradeHandler(upgradeSvc, policy, logger)

	r.Add(modules.NewAuthModule(authH, users))
	r.Add(modules.NewBootcampModule(bootcampH, courseH, reviewH, users))
	r.Add(modules.NewCourseModule(courseH, users))
	r.Add(modules.NewReviewModule(reviewH, users))
	r.Add(modules.NewUserModule(userH, users))
	r.Add(modules.NewUpgradeModule(upgradeH, users))

	return recompute
}
