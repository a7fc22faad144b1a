package config

import "errors"

var (
	ErrRedisAddrMissing      = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB        = errors.New("REDIS_DB must be a valid integer")
	ErrInvalidNotifyCenter   = errors.New("NOTIFY_CENTER must be one of memory, redis, cloudtasks")
	ErrInvalidTimezone       = errors.New("REMINDER_TIMEZONE must be a valid IANA time zone")
	ErrInvalidDispatchPeriod = errors.New("NOTIFY_DISPATCH_INTERVAL must be a positive duration")
)
