package cache

import (
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// key names definition
const (
	SessionKey   = "session:%s"                       // '%s' is the session token
	ApplyLockKey = "application:role:%d:user:%s:lock" // '%d' is role id, '%s' is applicant username
)

func MakeSessionKey(token string) string {
	return fmt.Sprintf(SessionKey, token)
}

func MakeApplyLockKey(roleID uint, username string) string {
	return fmt.Sprintf(ApplyLockKey, roleID, username)
}

// errors
var (
	ErrLockHeld = errors.New("lock is held by another request")
)

// lua scripts
var releaseLockScript = redis.NewScript(`
	-- KEYS[1] = lock key
	-- ARGV[1] = owner token written on acquire

	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)
