package domain

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/qs-lzh/troupe/internal/cache"
	"github.com/qs-lzh/troupe/internal/repository"
	"github.com/qs-lzh/troupe/internal/testutil/testdb"
)

type fixture struct {
	db    *gorm.DB
	cache *cache.RedisCache

	performances *performanceService
	roles        *roleService
	applications *applicationService
	identity     *identityService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testdb.Open(t)
	mr := miniredis.RunT(t)
	redisCache := cache.NewRedisCache(mr.Addr(), "")
	t.Cleanup(func() { _ = redisCache.Close() })
	logger := zaptest.NewLogger(t)

	performanceRepo := repository.NewPerformanceRepoGorm(db)
	roleRepo := repository.NewRoleRepoGorm(db)
	applicationRepo := repository.NewApplicationRepoGorm(db)
	userRepo := repository.NewUserRepoGorm(db)

	applications := NewApplicationService(db, applicationRepo, roleRepo, redisCache, logger)
	// strictly increasing applied_at keeps ordering assertions deterministic
	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	applications.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	return &fixture{
		db:           db,
		cache:        redisCache,
		performances: NewPerformanceService(db, performanceRepo, roleRepo, applicationRepo, logger),
		roles:        NewRoleService(db, roleRepo, performanceRepo, applicationRepo, logger),
		applications: applications,
		identity: NewIdentityService(userRepo, redisCache, IdentityOptions{
			SessionTTL:      time.Hour,
			BootstrapSuffix: "20041889",
		}, logger),
	}
}
