package app

import (
	"github.com/qs-lzh/troupe/config"
	"github.com/qs-lzh/troupe/internal/cache"
	"github.com/qs-lzh/troupe/internal/mq"
	"github.com/qs-lzh/troupe/internal/repository"
	"github.com/qs-lzh/troupe/internal/service/domain"
	"github.com/qs-lzh/troupe/internal/service/workflow"
	"github.com/qs-lzh/troupe/internal/storage"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config

	DB      *gorm.DB
	Cache   *cache.RedisCache
	Logger  *zap.Logger
	MQConn  *amqp.Connection
	Objects storage.ObjectStore

	PerformanceService domain.PerformanceService
	RoleService        domain.RoleService
	ApplicationService domain.ApplicationService
	IdentityService    domain.IdentityService
	LessonService      domain.LessonService
	FileService        domain.FileService

	CastingWorkflow      *workflow.CastingWorkflow
	NotificationWorkflow *workflow.NotificationWorkflow

	publisher *mq.ChannelPublisher
}

// New wires repositories, services and workflows. mqConn may be nil, in which case
// casting events are dropped.
func New(config *config.Config, db *gorm.DB, cache *cache.RedisCache, mqConn *amqp.Connection,
	objects storage.ObjectStore, logger *zap.Logger) (*App, error) {
	performanceRepo := repository.NewPerformanceRepoGorm(db)
	roleRepo := repository.NewRoleRepoGorm(db)
	applicationRepo := repository.NewApplicationRepoGorm(db)
	userRepo := repository.NewUserRepoGorm(db)
	lessonRepo := repository.NewLessonRepoGorm(db)
	fileRepo := repository.NewFileRepoGorm(db)

	performanceService := domain.NewPerformanceService(db, performanceRepo, roleRepo, applicationRepo, logger)
	roleService := domain.NewRoleService(db, roleRepo, performanceRepo, applicationRepo, logger)
	applicationService := domain.NewApplicationService(db, applicationRepo, roleRepo, cache, logger)
	identityService := domain.NewIdentityService(userRepo, cache, domain.IdentityOptions{
		SessionTTL:      config.SessionTTL,
		BootstrapSuffix: config.OrganizerBootstrapSuffix,
	}, logger)
	lessonService := domain.NewLessonService(lessonRepo)
	fileService := domain.NewFileService(fileRepo, objects, logger)

	var (
		publisher *mq.ChannelPublisher
		pub       mq.Publisher
	)
	if mqConn != nil {
		var err error
		publisher, err = mq.NewChannelPublisher(mqConn)
		if err != nil {
			return nil, err
		}
		pub = publisher
	}

	castingWorkflow := workflow.NewCastingWorkflow(performanceService, roleService, applicationService, pub, logger)
	notificationWorkflow := workflow.NewNotificationWorkflow(logger)

	return &App{
		Config:               config,
		DB:                   db,
		Cache:                cache,
		Logger:               logger,
		MQConn:               mqConn,
		Objects:              objects,
		PerformanceService:   performanceService,
		RoleService:          roleService,
		ApplicationService:   applicationService,
		IdentityService:      identityService,
		LessonService:        lessonService,
		FileService:          fileService,
		CastingWorkflow:      castingWorkflow,
		NotificationWorkflow: notificationWorkflow,
		publisher:            publisher,
	}, nil
}

func (app *App) Init() error {
	if app.MQConn == nil {
		app.Logger.Warn("RABBIT_MQ_URL not set, casting events will not be published")
		return nil
	}

	// init rabbit mq
	if err := mq.InitQueues(app.MQConn); err != nil {
		return err
	}
	return app.NotificationWorkflow.Start(app.MQConn)
}

func (app *App) Close() error {
	if app.publisher != nil {
		_ = app.publisher.Close()
	}
	if app.MQConn != nil {
		_ = app.MQConn.Close()
	}
	if app.Cache != nil {
		_ = app.Cache.Close()
	}
	sqlDB, err := app.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
