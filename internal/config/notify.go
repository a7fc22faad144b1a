package config

import (
	"os"
	"time"
)

const (
	notifyCenterEnv     = "NOTIFY_CENTER"
	dispatchIntervalEnv = "NOTIFY_DISPATCH_INTERVAL"
	reminderTimezoneEnv = "REMINDER_TIMEZONE"
	rearmOnFireEnv      = "REARM_ON_FIRE"
	resyncOnStartEnv    = "RESYNC_ON_START"

	defaultNotifyCenter     = NotifyCenterRedis
	defaultDispatchInterval = time.Second
)

type NotifyCenter string

const (
	NotifyCenterMemory     NotifyCenter = "memory"
	NotifyCenterRedis      NotifyCenter = "redis"
	NotifyCenterCloudTasks NotifyCenter = "cloudtasks"
)

type NotifyConfig struct {
	Center           NotifyCenter
	DispatchInterval time.Duration
	Location         *time.Location
	// RearmOnFire re-registers a repeating reminder's triggers when one of them is activated.
	RearmOnFire   bool
	ResyncOnStart bool
}

func LoadNotifyConfig() (*NotifyConfig, error) {
	center := NotifyCenter(os.Getenv(notifyCenterEnv))
	if center == "" {
		center = defaultNotifyCenter
	}
	switch center {
	case NotifyCenterMemory, NotifyCenterRedis, NotifyCenterCloudTasks:
	default:
		return nil, ErrInvalidNotifyCenter
	}

	interval := defaultDispatchInterval
	if v := os.Getenv(dispatchIntervalEnv); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			return nil, ErrInvalidDispatchPeriod
		}
		interval = parsed
	}

	loc := time.Local
	if v := os.Getenv(reminderTimezoneEnv); v != "" {
		parsed, err := time.LoadLocation(v)
		if err != nil {
			return nil, ErrInvalidTimezone
		}
		loc = parsed
	}

	return &NotifyConfig{
		Center:           center,
		DispatchInterval: interval,
		Location:         loc,
		RearmOnFire:      os.Getenv(rearmOnFireEnv) == "true",
		ResyncOnStart:    os.Getenv(resyncOnStartEnv) == "true",
	}, nil
}
