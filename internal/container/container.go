package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devtrail/bootcamp-api/config"
	"github.com/devtrail/bootcamp-api/pkg/geocoder"
	"github.com/devtrail/bootcamp-api/pkg/helpers"
	"github.com/devtrail/bootcamp-api/pkg/mailer"
	"github.com/devtrail/bootcamp-api/pkg/uploads"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager  *helpers.JWTManager
	cookies     *helpers.CookieManager
	geoClient   *geocoder.Client
	uploadStore uploads.Store

	mailgunClient *mailer.Mailgun
	rabbitPub     *helpers.RabbitPublisher
	esClient      *elasticsearch.Client
)

func SetConfig(c *config.Config)          { cfg = c }
func GetConfig() *config.Config           { return cfg }
func SetLogger(l *logrus.Logger)          { logger = l }
func GetLogger() *logrus.Logger           { return logger }
func SetMongo(c *mongo.Client)            { mongoClient = c }
func GetMongo() *mongo.Client             { return mongoClient }
func SetMongoDB(db *mongo.Database)       { mongoDB = db }
func GetMongoDB() *mongo.Database         { return mongoDB }
func SetRedis(r *redis.Client)            { redisClient = r }
func GetRedis() *redis.Client             { return redisClient }
func SetGCS(s *storage.Client)            { gcsClient = s }
func GetGCS() *storage.Client             { return gcsClient }
func SetJWT(m *helpers.JWTManager)        { jwtManager = m }
func GetJWT() *helpers.JWTManager         { return jwtManager }
func SetCookies(m *helpers.CookieManager) { cookies = m }
func GetCookies() *helpers.CookieManager  { return cookies }
func SetGeocoder(g *geocoder.Client)      { geoClient = g }
func GetGeocoder() *geocoder.Client       { return geoClient }
func SetUploadStore(s uploads.Store)      { uploadStore = s }
func GetUploadStore() uploads.Store       { return uploadStore }

func SetMailgun(m *mailer.Mailgun)            { mailgunClient = m }
func GetMailgun() *mailer.Mailgun             { return mailgunClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
